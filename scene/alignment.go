// scene/alignment.go

package scene

import "fmt"

// Alignment names the pivot point on an object's bounding box that its
// declared position refers to: a horizontal anchor (left, mid, right)
// paired with a vertical one (top, centered, bottom).
type Alignment int

const (
	AlignTopLeft Alignment = iota
	AlignTopCentered
	AlignTopRight
	AlignMidLeft
	AlignMidCentered
	AlignMidRight
	AlignBottomLeft
	AlignBottomCentered
	AlignBottomRight
)

// alignmentNames maps both serialized spellings to the enum value.
var alignmentNames = map[string]Alignment{
	"TOP_LEFT": AlignTopLeft, "TopLeft": AlignTopLeft,
	"TOP_CENTERED": AlignTopCentered, "TopCentered": AlignTopCentered,
	"TOP_RIGHT": AlignTopRight, "TopRight": AlignTopRight,
	"MID_LEFT": AlignMidLeft, "MidLeft": AlignMidLeft,
	"MID_CENTERED": AlignMidCentered, "MidCentered": AlignMidCentered,
	"MID_RIGHT": AlignMidRight, "MidRight": AlignMidRight,
	"BOTTOM_LEFT": AlignBottomLeft, "BottomLeft": AlignBottomLeft,
	"BOTTOM_CENTERED": AlignBottomCentered, "BottomCentered": AlignBottomCentered,
	"BOTTOM_RIGHT": AlignBottomRight, "BottomRight": AlignBottomRight,
}

// ParseAlignment accepts either the SCREAMING_SNAKE or the UpperCamel
// spelling of an alignment token.
func ParseAlignment(s string) (Alignment, error) {
	a, ok := alignmentNames[s]
	if !ok {
		return AlignTopLeft, fmt.Errorf("unknown alignment %q", s)
	}
	return a, nil
}

// Multipliers returns the fractional anchor position on each axis:
// 0 for left/top, 0.5 for mid/centered, 1 for right/bottom.
func (a Alignment) Multipliers() (mx, my float64) {
	switch a % 3 {
	case 1:
		mx = 0.5
	case 2:
		mx = 1
	}
	switch a / 3 {
	case 1:
		my = 0.5
	case 2:
		my = 1
	}
	return mx, my
}

// Offset returns the signed offset that, added to the evaluated position,
// yields the box's top-left corner. This is what lets "50%;50%" with
// MID_CENTERED mean "centered on screen" without half-width arithmetic.
func (a Alignment) Offset(width, height float64) (dx, dy float64) {
	mx, my := a.Multipliers()
	return -width * mx, -height * my
}

func (a Alignment) String() string {
	for name, v := range alignmentNames {
		if v == a && name[0] >= 'A' && name[0] <= 'Z' && len(name) > 1 && name[1] >= 'a' {
			return name
		}
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}
