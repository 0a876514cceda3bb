// scene/instruction.go

package scene

// Kind discriminates the draw instruction variants.
type Kind int

const (
	KindRect Kind = iota
	KindRoundedRect
	KindText
	KindImage
)

// Instruction is the per-frame numeric output of evaluating one renderable:
// concrete pixel geometry (already offset by the alignment pivot, so X/Y is
// the top-left corner), a concrete RGBA color with channels in [0,1], and
// the variant-specific payload. Instructions are rebuilt every frame and
// never persisted.
type Instruction struct {
	Kind Kind

	X, Y, W, H float64
	Color      [4]float64

	// RoundedRect only.
	Corner float64

	// Image only.
	ImagePath string

	// Text only. Lines are in source order, each a left-to-right run of
	// resolved fragments; TextAlign is the horizontal justification
	// multiplier (0 left, 0.5 centered, 1 right) and LineHeight the
	// evaluated default text size.
	Lines      [][]ResolvedFragment
	TextAlign  float64
	LineHeight float64
}

// ResolvedFragment is a styled piece of one text line with all expressions
// already evaluated for the current frame.
type ResolvedFragment struct {
	Text   string
	Bold   bool
	Italic bool
	Font   string // named font from the deck, "" for the object's default
	Size   float64
	Color  [4]float64
}
