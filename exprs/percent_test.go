// exprs/percent_test.go

package exprs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPercent(t *testing.T) {
	tests := []struct {
		name string
		src  string
		axis Axis
		want string
	}{
		{"plain number", "50%", AxisW, "50/100*w"},
		{"height axis", "50%", AxisH, "50/100*h"},
		{"decimal", "12.5%", AxisW, "12.5/100*w"},
		{"after paren", "(10+5)%", AxisH, "(10+5)/100*h"},
		{"inside call", "sin(50%)", AxisW, "sin(50/100*w)"},
		{"two occurrences", "10% + 20%", AxisW, "10/100*w + 20/100*w"},
		{"space before percent", "50 %", AxisW, "50 /100*w"},
		{"no percent", "w/2 + t", AxisW, "w/2 + t"},
		{"leading percent untouched", "%50", AxisW, "%50"},
		{"free axis untouched", "50%", AxisNone, "50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPercent(tt.src, tt.axis))
		})
	}
}

func TestPercentEvaluates(t *testing.T) {
	c, err := Compile("50%", AxisW)
	assert.NoError(t, err)

	b := NewRegistry().Bindings()
	b.Set(0, 1000, 1)

	v, err := c.Eval(b)
	assert.NoError(t, err)
	assert.InDelta(t, 500.0, v, 1e-9)
}
