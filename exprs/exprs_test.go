// exprs/exprs_test.go

package exprs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBindings(t, w, h float64) *Bindings {
	b := NewRegistry().Bindings()
	b.Set(t, w, h)
	return b
}

func TestCompileEval(t *testing.T) {
	tests := []struct {
		src  string
		axis Axis
		t    float64
		w, h float64
		want float64
	}{
		{"1+2*3", AxisNone, 0, 0, 0, 7},
		{"2^3", AxisNone, 0, 0, 0, 8},
		{"-t+10", AxisNone, 4, 0, 0, 6},
		{"w/2", AxisW, 0, 800, 600, 400},
		{"h-100", AxisH, 0, 800, 600, 500},
		{"sin(0)", AxisNone, 0, 0, 0, 0},
		{"pi", AxisNone, 0, 0, 0, math.Pi},
		{"e", AxisNone, 0, 0, 0, math.E},
		{"clamp(t, 0, 1)", AxisNone, 5, 0, 0, 1},
		{"min(3, 1, 2)", AxisNone, 0, 0, 0, 1},
		{"max(3, 1, 2)", AxisNone, 0, 0, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c, err := Compile(tt.src, tt.axis)
			require.NoError(t, err)
			v, err := c.Eval(testBindings(tt.t, tt.w, tt.h))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v, 1e-9)
		})
	}
}

func TestEvalDeterministic(t *testing.T) {
	c, err := Compile("sin(t*2)+w/3-easeOutPow(t, 2)", AxisNone)
	require.NoError(t, err)

	b := testBindings(0.37, 1920, 1080)
	first, err := c.Eval(b)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		v, err := c.Eval(b)
		require.NoError(t, err)
		assert.Equal(t, first, v)
	}
}

func TestEvalIsTotal(t *testing.T) {
	b := testBindings(0, 1, 1)

	tests := []struct {
		src   string
		check func(float64) bool
	}{
		{"1/0", func(v float64) bool { return math.IsInf(v, 1) }},
		{"-1/0", func(v float64) bool { return math.IsInf(v, -1) }},
		{"0/0", math.IsNaN},
		{"sqrt(0-1)", math.IsNaN},
		{"ln(0)", func(v float64) bool { return math.IsInf(v, -1) }},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c, err := Compile(tt.src, AxisNone)
			require.NoError(t, err)
			v, err := c.Eval(b)
			require.NoError(t, err, "numeric anomalies must not be errors")
			assert.True(t, tt.check(v), "got %v", v)
		})
	}
}

func TestUnknownFunctionIsEvalError(t *testing.T) {
	// Unknown identifiers compile (they may be registered later) but fail
	// at evaluation.
	c, err := Compile("mystery(t)", AxisNone)
	require.NoError(t, err)

	_, err = c.Eval(testBindings(0, 1, 1))
	assert.Error(t, err)
	assert.Error(t, c.Verify(testBindings(0, 1, 1)))
}

func TestForwardDeclaredFunction(t *testing.T) {
	c, err := Compile("double(21)", AxisNone)
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Register("double", func(x float64) float64 { return 2 * x }))

	b := r.Bindings()
	b.Set(0, 1, 1)
	v, err := c.Eval(b)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{"", "1+", "(1+2", "1 2"} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src, AxisNone)
			assert.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestCompileList(t *testing.T) {
	l, err := CompileList("50%;25%", AxisW, AxisH)
	require.NoError(t, err)

	x, y, err := l.EvalVec2(testBindings(0, 1000, 200))
	require.NoError(t, err)
	assert.InDelta(t, 500.0, x, 1e-9)
	assert.InDelta(t, 50.0, y, 1e-9)
}

func TestCompileListTopLevelSplitOnly(t *testing.T) {
	// The semicolons that matter are the two top-level ones; none of the
	// commas or parenthesized content splits.
	l, err := CompileList("max(1, 2);min(3, 4)", AxisNone, AxisNone)
	require.NoError(t, err)

	x, y, err := l.EvalVec2(testBindings(0, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2.0, x)
	assert.Equal(t, 3.0, y)
}

func TestCompileListFieldCount(t *testing.T) {
	_, err := CompileList("1;2;3", AxisNone, AxisNone)
	assert.Error(t, err)

	_, err = CompileList("1", AxisW, AxisH)
	assert.Error(t, err)
}

func TestSplitTopLevel(t *testing.T) {
	parts, offsets := splitTopLevel("a;(b;c);d")
	assert.Equal(t, []string{"a", "(b;c)", "d"}, parts)
	assert.Equal(t, []int{0, 2, 8}, offsets)
}

func TestSetClock(t *testing.T) {
	b := NewRegistry().Bindings()
	b.Set(0, 1, 1)
	b.SetClock(time.Date(2026, time.August, 29, 13, 45, 30, 0, time.UTC))

	c, err := Compile("year*0 + month*0 + day + hour + minute + second", AxisNone)
	require.NoError(t, err)
	v, err := c.Eval(b)
	require.NoError(t, err)
	assert.Equal(t, 29.0+13+45+30, v)

	// The clock variables exist (as zero) before the first SetClock, so
	// Verify succeeds on expressions that use them.
	require.NoError(t, c.Verify(NewRegistry().Bindings()))
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(0))
	assert.True(t, Finite(-123.5))
	assert.False(t, Finite(math.NaN()))
	assert.False(t, Finite(math.Inf(1)))
	assert.False(t, Finite(math.Inf(-1)))
}
