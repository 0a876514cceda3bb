// exprs/percent.go

package exprs

import "strings"

// Axis selects which window dimension the percent shorthand in an
// expression refers to. Horizontal quantities resolve against the window
// width, vertical ones against the height. AxisNone is for fields that are
// not bound to a screen axis (color channels); their source never carries
// a percent sign.
type Axis int

const (
	AxisNone Axis = iota
	AxisW
	AxisH
)

func (a Axis) varName() string {
	switch a {
	case AxisW:
		return "w"
	case AxisH:
		return "h"
	}
	return ""
}

// expandPercent rewrites the percent shorthand into explicit arithmetic
// against the axis variable, e.g. "50%" on a horizontal field becomes
// "50/100*w".
//
// Substitution only happens when the percent sign directly follows a
// numeral or a closing parenthesis (ignoring spaces), which is the only
// position the shorthand syntax permits. Any other occurrence is left
// untouched and handed to the parser as-is, so "sin(50%)" substitutes
// inside the call argument while a stray leading "%" does not.
func expandPercent(src string, axis Axis) string {
	if axis == AxisNone || !strings.ContainsRune(src, '%') {
		return src
	}

	repl := "/100*" + axis.varName()

	var b strings.Builder
	b.Grow(len(src) + strings.Count(src, "%")*len(repl))

	var prev byte // last significant (non-space) byte seen
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '%' && percentAnchor(prev) {
			b.WriteString(repl)
			prev = ')' // the substitution ends in an identifier; a further % may follow it
			continue
		}
		b.WriteByte(c)
		if c != ' ' && c != '\t' {
			prev = c
		}
	}
	return b.String()
}

func percentAnchor(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == ')'
}
