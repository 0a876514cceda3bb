// scene/renderable.go

// Package scene holds the renderable object model of a slide deck: the
// expression-driven property sets of rectangles, rounded rectangles, text
// blocks and images, and the per-frame composition of a slide into
// concrete draw instructions.
package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exprdeck/exprdeck/exprs"
)

// Renderable is any visual element of a slide. Resolve evaluates every
// property expression against the frame bindings and produces the
// concrete draw instruction for this frame.
type Renderable interface {
	Resolve(b *exprs.Bindings) (Instruction, error)
	Base() *BaseProperties
}

// BaseProperties are the expression-driven properties every renderable
// shares: a position pair, a size pair, an RGBA color quadruple and the
// alignment pivot. All expressions are parsed once here and evaluated once
// per frame.
type BaseProperties struct {
	Pos   *exprs.List
	Size  *exprs.List
	Color *exprs.List
	Align Alignment
}

// NewBaseProperties parses the four property strings of a renderable.
// Position and size alternate width/height axes for the percent shorthand;
// color channels are axis-free.
func NewBaseProperties(pos, size, color, align string) (*BaseProperties, error) {
	p, err := exprs.CompileList(pos, exprs.AxisW, exprs.AxisH)
	if err != nil {
		return nil, fmt.Errorf("pos: %w", err)
	}
	s, err := exprs.CompileList(size, exprs.AxisW, exprs.AxisH)
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	c, err := exprs.CompileList(color, exprs.AxisNone, exprs.AxisNone, exprs.AxisNone, exprs.AxisNone)
	if err != nil {
		return nil, fmt.Errorf("color: %w", err)
	}
	a, err := ParseAlignment(align)
	if err != nil {
		return nil, fmt.Errorf("alignment: %w", err)
	}
	return &BaseProperties{Pos: p, Size: s, Color: c, Align: a}, nil
}

// resolveFrame evaluates the shared properties and applies the alignment
// offset, yielding the top-left corner of the box.
func (bp *BaseProperties) resolveFrame(b *exprs.Bindings) (x, y, w, h float64, col [4]float64, err error) {
	if x, y, err = bp.Pos.EvalVec2(b); err != nil {
		return
	}
	if w, h, err = bp.Size.EvalVec2(b); err != nil {
		return
	}
	if col, err = bp.Color.EvalVec4(b); err != nil {
		return
	}
	dx, dy := bp.Align.Offset(w, h)
	x += dx
	y += dy
	return
}

// Rect is a flat colored rectangle.
type Rect struct {
	base *BaseProperties
}

func NewRect(base *BaseProperties) *Rect { return &Rect{base: base} }

func (r *Rect) Base() *BaseProperties { return r.base }

func (r *Rect) Resolve(b *exprs.Bindings) (Instruction, error) {
	x, y, w, h, col, err := r.base.resolveFrame(b)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindRect, X: x, Y: y, W: w, H: h, Color: col}, nil
}

// RoundedRect is a rectangle with an animatable corner radius. The radius
// expression is height-based for the percent shorthand.
type RoundedRect struct {
	base   *BaseProperties
	corner *exprs.Compiled
}

func NewRoundedRect(base *BaseProperties, corner string) (*RoundedRect, error) {
	c, err := exprs.Compile(corner, exprs.AxisH)
	if err != nil {
		return nil, fmt.Errorf("corner rounding: %w", err)
	}
	return &RoundedRect{base: base, corner: c}, nil
}

func (r *RoundedRect) Base() *BaseProperties { return r.base }

func (r *RoundedRect) Resolve(b *exprs.Bindings) (Instruction, error) {
	x, y, w, h, col, err := r.base.resolveFrame(b)
	if err != nil {
		return Instruction{}, err
	}
	corner, err := r.corner.Eval(b)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindRoundedRect, X: x, Y: y, W: w, H: h, Color: col, Corner: corner}, nil
}

// Image draws a texture; loading and caching the file is the renderer's
// concern, the scene only carries the path. The color acts as a tint.
type Image struct {
	base *BaseProperties
	path string
}

func NewImage(base *BaseProperties, path string) (*Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image: empty path")
	}
	return &Image{base: base, path: path}, nil
}

func (im *Image) Base() *BaseProperties { return im.base }

func (im *Image) Path() string { return im.path }

func (im *Image) Resolve(b *exprs.Bindings) (Instruction, error) {
	x, y, w, h, col, err := im.base.resolveFrame(b)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindImage, X: x, Y: y, W: w, H: h, Color: col, ImagePath: im.path}, nil
}

// Text is a block of styled text lines. The size pair doubles as (wrapping
// width ; default text height), matching how decks declare it; fragments
// carry their own size/color overrides from the run parser. Placeholders
// map the {{name}} markers in the lines to their value expressions.
type Text struct {
	base         *BaseProperties
	font         string
	lines        [][]Fragment
	textAlign    Alignment
	placeholders map[string]*exprs.Compiled
}

// NewText run-parses each source line. textAlign only uses the horizontal
// component and accepts the bare spellings LEFT, CENTERED and RIGHT in
// addition to the full tokens. Every placeholder a line references must
// have an expression in placeholders.
func NewText(base *BaseProperties, lines []string, font, textAlign string, placeholders map[string]*exprs.Compiled) (*Text, error) {
	parsed := make([][]Fragment, len(lines))
	for i, line := range lines {
		frags, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("text line %d: %w", i, err)
		}
		for _, f := range frags {
			if f.Placeholder != "" {
				if _, ok := placeholders[f.Placeholder]; !ok {
					return nil, fmt.Errorf("text line %d: undeclared placeholder %q", i, f.Placeholder)
				}
			}
		}
		parsed[i] = frags
	}
	ta, err := parseTextAlignment(textAlign)
	if err != nil {
		return nil, err
	}
	return &Text{base: base, font: font, lines: parsed, textAlign: ta, placeholders: placeholders}, nil
}

func parseTextAlignment(s string) (Alignment, error) {
	if s == "" {
		return AlignTopLeft, nil
	}
	if a, err := ParseAlignment("TOP_" + s); err == nil {
		return a, nil
	}
	a, err := ParseAlignment(s)
	if err != nil {
		return AlignTopLeft, fmt.Errorf("text alignment: %w", err)
	}
	return a, nil
}

func (t *Text) Base() *BaseProperties { return t.base }

// Font returns the deck font name the block defaults to.
func (t *Text) Font() string { return t.font }

func (t *Text) Resolve(b *exprs.Bindings) (Instruction, error) {
	x, y, w, h, col, err := t.base.resolveFrame(b)
	if err != nil {
		return Instruction{}, err
	}

	defaultSize, err := t.base.Size.At(1).Eval(b)
	if err != nil {
		return Instruction{}, err
	}

	lines := make([][]ResolvedFragment, len(t.lines))
	for i, frags := range t.lines {
		line := make([]ResolvedFragment, len(frags))
		for j, f := range frags {
			rf := ResolvedFragment{
				Text:   f.Text,
				Bold:   f.Bold,
				Italic: f.Italic,
				Font:   f.Font,
				Size:   defaultSize,
				Color:  col,
			}
			if rf.Font == "" {
				rf.Font = t.font
			}
			if f.Size != nil {
				if rf.Size, err = f.Size.Eval(b); err != nil {
					return Instruction{}, err
				}
			}
			if f.Color != nil {
				if err = evalSpanColor(f.Color, b, col[3], &rf.Color); err != nil {
					return Instruction{}, err
				}
			}
			if f.Placeholder != "" {
				v, err := t.placeholders[f.Placeholder].Eval(b)
				if err != nil {
					return Instruction{}, fmt.Errorf("placeholder %q: %w", f.Placeholder, err)
				}
				rf.Text = padNumber(v, f.PadChar, f.PadLeft, f.PadAmount)
			}
			line[j] = rf
		}
		lines[i] = line
	}

	mx, _ := t.textAlign.Multipliers()
	return Instruction{
		Kind: KindText,
		X:    x, Y: y, W: w, H: h,
		Color:      col,
		Lines:      lines,
		TextAlign:  mx,
		LineHeight: defaultSize,
	}, nil
}

// padNumber formats a placeholder value, padding it with padChar up to
// width on the declared side.
func padNumber(v float64, padChar byte, padLeft bool, width int) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if n := width - len(s); n > 0 {
		pad := strings.Repeat(string(padChar), n)
		if padLeft {
			return pad + s
		}
		return s + pad
	}
	return s
}

// evalSpanColor fills dst from a 3- or 4-channel span color list,
// inheriting the enclosing alpha when the span declared only three.
func evalSpanColor(l *exprs.List, b *exprs.Bindings, baseAlpha float64, dst *[4]float64) error {
	for i := 0; i < l.Len(); i++ {
		v, err := l.At(i).Eval(b)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	if l.Len() == 3 {
		dst[3] = baseAlpha
	}
	return nil
}
