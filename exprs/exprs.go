// exprs/exprs.go

// Package exprs implements the expression engine behind every animatable
// property of a deck: percent-sugar preprocessing, parse-ahead compilation
// of property strings, and per-frame evaluation against the window size and
// the elapsed slide time.
//
// Parsing, compilation and VM execution are delegated to
// github.com/expr-lang/expr; this package contributes the property syntax
// on top of it (percent shorthand, semicolon-separated field lists) and the
// frozen function registry expressions resolve against.
package exprs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Compiled is a single property expression, parsed once at load time and
// evaluated once per frame. Immutable after compilation.
type Compiled struct {
	prog *vm.Program
	src  string // preprocessed source, kept for diagnostics
}

// ParseError reports a malformed property expression together with the
// field it came from. Field is the zero-based index within a
// semicolon-separated list and Offset the byte position of that field in
// the original property string.
type ParseError struct {
	Src    string
	Field  int
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr %q (field %d, offset %d): %v", e.Src, e.Field, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Compile preprocesses and parses a single expression. Identifiers are not
// resolved here; they are looked up in the evaluation environment per
// frame, so functions registered after parsing (but before the registry
// freeze) work fine.
func Compile(src string, axis Axis) (*Compiled, error) {
	return compileField(src, axis, 0, 0)
}

func compileField(src string, axis Axis, field, offset int) (*Compiled, error) {
	expanded := expandPercent(strings.TrimSpace(src), axis)
	if expanded == "" {
		return nil, &ParseError{Src: src, Field: field, Offset: offset, Err: fmt.Errorf("empty expression")}
	}
	prog, err := expr.Compile(expanded, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, &ParseError{Src: expanded, Field: field, Offset: offset, Err: err}
	}
	return &Compiled{prog: prog, src: expanded}, nil
}

// Source returns the preprocessed source the expression was compiled from.
func (c *Compiled) Source() string { return c.src }

// Eval runs the expression against the given bindings. The result follows
// IEEE-754 semantics throughout (division by zero yields an infinity, not
// an error); an unknown function or variable at evaluation time is
// returned as an error.
func (c *Compiled) Eval(b *Bindings) (float64, error) {
	out, err := b.vm.Run(c.prog, b.env)
	if err != nil {
		return 0, fmt.Errorf("eval %q: %w", c.src, err)
	}
	f, ok := toFloat(out)
	if !ok {
		return 0, fmt.Errorf("eval %q: non-numeric result %T", c.src, out)
	}
	return f, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// List is a fixed-size vector of expressions parsed from one
// semicolon-separated property string, e.g. "50%;50%" for a position or
// "1;0;0;1" for a color.
type List struct {
	fields []*Compiled
}

// CompileList splits src on top-level semicolons (semicolons inside
// parentheses never split a field) and compiles each field with the
// corresponding axis. The field count must match len(axes) exactly.
func CompileList(src string, axes ...Axis) (*List, error) {
	parts, offsets := splitTopLevel(src)
	if len(parts) != len(axes) {
		return nil, &ParseError{
			Src: src,
			Err: fmt.Errorf("expected %d semicolon-separated fields, got %d", len(axes), len(parts)),
		}
	}
	fields := make([]*Compiled, len(parts))
	for i, part := range parts {
		c, err := compileField(part, axes[i], i, offsets[i])
		if err != nil {
			return nil, err
		}
		fields[i] = c
	}
	return &List{fields: fields}, nil
}

// splitTopLevel splits on semicolons outside any parentheses and returns
// the fields together with their byte offsets in src.
func splitTopLevel(src string) ([]string, []int) {
	var (
		parts   []string
		offsets []int
		depth   int
		start   int
	)
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				parts = append(parts, src[start:i])
				offsets = append(offsets, start)
				start = i + 1
			}
		}
	}
	parts = append(parts, src[start:])
	offsets = append(offsets, start)
	return parts, offsets
}

// Len returns the number of fields in the list.
func (l *List) Len() int { return len(l.fields) }

// At returns the i-th field expression.
func (l *List) At(i int) *Compiled { return l.fields[i] }

// EvalVec2 evaluates a two-field list (position or size).
func (l *List) EvalVec2(b *Bindings) (x, y float64, err error) {
	if x, err = l.fields[0].Eval(b); err != nil {
		return 0, 0, err
	}
	if y, err = l.fields[1].Eval(b); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// EvalVec4 evaluates a four-field list (an RGBA color).
func (l *List) EvalVec4(b *Bindings) (out [4]float64, err error) {
	for i, f := range l.fields {
		if out[i], err = f.Eval(b); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Bindings is the per-frame evaluation environment: the variables t, w and
// h layered over a frozen registry snapshot. A Bindings value is rebound
// with Set every frame and reused, so the hot path performs no environment
// allocation; it is not safe for concurrent use.
type Bindings struct {
	env map[string]any
	vm  vm.VM
}

// Bindings builds an evaluation environment over this registry, freezing
// it in the process.
func (r *Registry) Bindings() *Bindings {
	env := r.snapshot()
	for _, name := range []string{"t", "w", "h", "day", "month", "year", "hour", "minute", "second"} {
		env[name] = float64(0)
	}
	return &Bindings{env: env}
}

// Set rebinds the frame variables: elapsed seconds on the current slide
// and the window dimensions in pixels.
func (b *Bindings) Set(t, w, h float64) {
	b.env["t"] = t
	b.env["w"] = w
	b.env["h"] = h
}

// SetClock rebinds the wall-clock variables (day, month, year, hour,
// minute, second), which placeholder expressions use for live date/time
// readouts.
func (b *Bindings) SetClock(now time.Time) {
	b.env["day"] = float64(now.Day())
	b.env["month"] = float64(int(now.Month()))
	b.env["year"] = float64(now.Year())
	b.env["hour"] = float64(now.Hour())
	b.env["minute"] = float64(now.Minute())
	b.env["second"] = float64(now.Second())
}

// Verify runs the expression once against neutral bindings (t=0, w=1, h=1)
// to surface unresolved identifiers before playback starts. Numeric
// anomalies (NaN, infinities) are not errors here.
func (c *Compiled) Verify(b *Bindings) error {
	saved := [3]any{b.env["t"], b.env["w"], b.env["h"]}
	b.Set(0, 1, 1)
	_, err := c.Eval(b)
	b.env["t"], b.env["w"], b.env["h"] = saved[0], saved[1], saved[2]
	return err
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
