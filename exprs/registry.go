// exprs/registry.go

package exprs

import (
	"fmt"
	"math"
	"sync"
)

// Registry is the table of named functions and constants that expressions
// resolve their identifiers against. It is built once at startup with the
// built-in set, may be extended by external callers (e.g. an embedded
// scripting host) and is then frozen before the first frame is evaluated.
// After freezing it is read-only and safe to share.
type Registry struct {
	mu      sync.Mutex
	entries map[string]any
	frozen  bool
}

// NewRegistry returns a registry populated with the built-in functions and
// the constants pi and e.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]any, len(builtins)+2)}
	for name, fn := range builtins {
		r.entries[name] = adapt(name, fn)
	}
	r.entries["pi"] = math.Pi
	r.entries["e"] = math.E
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a named function (or numeric constant) to the registry.
// Registration fails once the registry has been frozen; lookups are by
// exact, case-sensitive name.
func (r *Registry) Register(name string, fn any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("registry: cannot register %q after freeze", name)
	}
	if name == "" {
		return fmt.Errorf("registry: empty function name")
	}
	r.entries[name] = adapt(name, fn)
	return nil
}

// adapt wraps a closed-form float function so that every argument is
// coerced to float64 before the call. The expression VM calls registered
// functions through reflection and hands integer literals over as int, so
// without the wrapper "sin(0)" or "easeOutPow(t, 3)" would fail with a
// reflection type error instead of evaluating. Values that are not one of
// the recognized function shapes (numeric constants, already-wrapped
// functions) pass through unchanged.
func adapt(name string, v any) any {
	switch f := v.(type) {
	case func() float64:
		return func(args ...any) (any, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("%s: want no arguments, got %d", name, len(args))
			}
			return f(), nil
		}
	case func(float64) float64:
		return func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: want 1 argument, got %d", name, len(args))
			}
			x, err := floatArg(name, args[0])
			if err != nil {
				return nil, err
			}
			return f(x), nil
		}
	case func(float64, float64) float64:
		return func(args ...any) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("%s: want 2 arguments, got %d", name, len(args))
			}
			x, err := floatArg(name, args[0])
			if err != nil {
				return nil, err
			}
			y, err := floatArg(name, args[1])
			if err != nil {
				return nil, err
			}
			return f(x, y), nil
		}
	case func(float64, float64, float64) float64:
		return func(args ...any) (any, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("%s: want 3 arguments, got %d", name, len(args))
			}
			x, err := floatArg(name, args[0])
			if err != nil {
				return nil, err
			}
			y, err := floatArg(name, args[1])
			if err != nil {
				return nil, err
			}
			z, err := floatArg(name, args[2])
			if err != nil {
				return nil, err
			}
			return f(x, y, z), nil
		}
	case func(...float64) float64:
		return func(args ...any) (any, error) {
			xs := make([]float64, len(args))
			for i, a := range args {
				x, err := floatArg(name, a)
				if err != nil {
					return nil, err
				}
				xs[i] = x
			}
			return f(xs...), nil
		}
	}
	return v
}

func floatArg(name string, a any) (float64, error) {
	x, ok := toFloat(a)
	if !ok {
		return 0, fmt.Errorf("%s: argument %T is not a number", name, a)
	}
	return x, nil
}

// Freeze marks the registry read-only. Safe to call more than once.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// snapshot copies the entries into a fresh map for use as the base of an
// evaluation environment. Freezes the registry as a side effect: once any
// bindings exist, late registrations would not be visible to them anyway.
func (r *Registry) snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	m := make(map[string]any, len(r.entries)+3)
	for k, v := range r.entries {
		m[k] = v
	}
	return m
}

// clampUnit clamps the easing parameter into [0,1], the domain every easing
// function is defined on.
func clampUnit(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

const equalityTolerance = 1e-9

var builtins = map[string]any{
	// Power, log, root.
	"sqrt": math.Sqrt,
	"exp":  math.Exp,
	"ln":   math.Log,
	"abs":  math.Abs,

	// Trigonometry.
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"atan2": math.Atan2,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,

	// Rounding and signs.
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"signum": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},

	// Clamping, selection, comparison.
	"clamp": func(x, lo, hi float64) float64 { return math.Min(math.Max(x, lo), hi) },
	"min": func(xs ...float64) float64 {
		m := math.Inf(1)
		for _, x := range xs {
			m = math.Min(m, x)
		}
		return m
	},
	"max": func(xs ...float64) float64 {
		m := math.Inf(-1)
		for _, x := range xs {
			m = math.Max(m, x)
		}
		return m
	},
	"isEqual": func(a, b float64) float64 {
		if math.Abs(a-b) < equalityTolerance {
			return 1
		}
		return 0
	},
	"isGreater": func(a, b float64) float64 {
		if a > b {
			return 1
		}
		return 0
	},
	"isLess": func(a, b float64) float64 {
		if a < b {
			return 1
		}
		return 0
	},

	// Easing family. Closed forms follow https://easings.net/; every
	// function clamps its time parameter into [0,1] first.
	"easeInSine":  func(t float64) float64 { return 1 - math.Cos(clampUnit(t)*math.Pi/2) },
	"easeOutSine": func(t float64) float64 { return math.Sin(clampUnit(t) * math.Pi / 2) },
	"easeInOutSine": func(t float64) float64 {
		return -math.Cos(clampUnit(t)*math.Pi)/2 + 0.5
	},
	"easeInPow": func(t, pow float64) float64 { return math.Pow(clampUnit(t), pow) },
	"easeOutPow": func(t, pow float64) float64 {
		return 1 - math.Pow(1-clampUnit(t), pow)
	},
	"easeInOutPow": func(t, pow float64) float64 {
		t = clampUnit(t)
		if t < 0.5 {
			return math.Pow(2, pow-1) * math.Pow(t, pow)
		}
		return 1 - math.Pow(-2*t+2, pow)/2
	},
	"easeInExpo":    easeInExpo,
	"easeOutExpo":   easeOutExpo,
	"easeInOutExpo": easeInOutExpo,

	// Spellings used by older decks.
	"easeInExp":    easeInExpo,
	"easeOutExp":   easeOutExpo,
	"easeInOutExp": easeInOutExpo,
}

func easeInExpo(t float64) float64 {
	t = clampUnit(t)
	if t == 0 {
		return 0
	}
	return math.Pow(2, 10*t-10)
}

func easeOutExpo(t float64) float64 {
	t = clampUnit(t)
	if t == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*t)
}

func easeInOutExpo(t float64) float64 {
	t = clampUnit(t)
	switch {
	case t == 0:
		return 0
	case t == 1:
		return 1
	case t < 0.5:
		return math.Pow(2, 20*t-10) / 2
	}
	return 1 - math.Pow(2, -20*t+10)/2
}
