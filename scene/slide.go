// scene/slide.go

package scene

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/exprdeck/exprdeck/exprs"
)

// Object pairs a renderable with its z-order. Declaration order within a
// slide breaks z ties.
type Object struct {
	R Renderable
	Z int
}

// Slide is an ordered set of renderables plus a background, which is
// itself a full renderable and may be animated exactly like content. The
// background is always drawn first regardless of z.
type Slide struct {
	background Renderable
	content    []Object

	order   []int // content indices sorted by (z, declaration order)
	warned  map[int]bool
	scratch []Instruction
}

// NewSlide creates a slide. A nil background gets the default: a white
// rectangle covering the window.
func NewSlide(background Renderable) *Slide {
	if background == nil {
		background = defaultBackground()
	}
	return &Slide{background: background, warned: make(map[int]bool)}
}

func defaultBackground() Renderable {
	base, err := NewBaseProperties("0;0", "100%;100%", "1;1;1;1", "TOP_LEFT")
	if err != nil {
		panic(fmt.Sprintf("scene: default background: %v", err))
	}
	return NewRect(base)
}

// Background returns the slide's background renderable.
func (s *Slide) Background() Renderable { return s.background }

// Add appends a renderable at the given z. Content added later sorts after
// earlier content with the same z.
func (s *Slide) Add(r Renderable, z int) {
	s.content = append(s.content, Object{R: r, Z: z})
	s.order = nil
}

// Content returns the slide's objects in declaration order.
func (s *Slide) Content() []Object { return s.content }

// Compose is the per-frame entry point: it rebinds t (elapsed seconds on
// this slide), w and h, resolves the background and then every object by
// ascending z, and returns the frame's draw instructions. The returned
// slice is reused across frames; callers must not retain it.
//
// Failures are isolated per object: an evaluation error (logged once, not
// per frame) or a non-finite geometry/color skips that object and the rest
// of the slide renders normally.
func (s *Slide) Compose(b *exprs.Bindings, t, w, h float64) []Instruction {
	b.Set(t, w, h)
	b.SetClock(time.Now())
	s.scratch = s.scratch[:0]

	if inst, err := s.background.Resolve(b); err != nil {
		s.warnOnce(-1, "background", err)
	} else if finite(&inst) {
		clampColors(&inst)
		s.scratch = append(s.scratch, inst)
	}

	for _, idx := range s.ordered() {
		obj := s.content[idx]
		inst, err := obj.R.Resolve(b)
		if err != nil {
			s.warnOnce(idx, fmt.Sprintf("object %d", idx), err)
			continue
		}
		if !finite(&inst) {
			continue
		}
		clampColors(&inst)
		s.scratch = append(s.scratch, inst)
	}
	return s.scratch
}

// Verify resolves every renderable once against neutral bindings so that
// expressions referencing still-unregistered functions fail before
// playback rather than mid-presentation.
func (s *Slide) Verify(b *exprs.Bindings) error {
	b.Set(0, 1, 1)
	if _, err := s.background.Resolve(b); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	for i, obj := range s.content {
		if _, err := obj.R.Resolve(b); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

// ordered returns content indices stable-sorted by ascending z.
func (s *Slide) ordered() []int {
	if s.order == nil {
		s.order = make([]int, len(s.content))
		for i := range s.order {
			s.order[i] = i
		}
		sort.SliceStable(s.order, func(a, b int) bool {
			return s.content[s.order[a]].Z < s.content[s.order[b]].Z
		})
	}
	return s.order
}

func (s *Slide) warnOnce(key int, what string, err error) {
	if s.warned[key] {
		return
	}
	s.warned[key] = true
	log.Printf("WARN: scene: skipping %s: %v", what, err)
}

// finite rejects instructions whose geometry, color or resolved text
// fragments contain NaN or an infinity.
func finite(inst *Instruction) bool {
	for _, v := range [...]float64{inst.X, inst.Y, inst.W, inst.H, inst.Corner} {
		if !exprs.Finite(v) {
			return false
		}
	}
	for _, c := range inst.Color {
		if !exprs.Finite(c) {
			return false
		}
	}
	for _, line := range inst.Lines {
		for _, f := range line {
			if !exprs.Finite(f.Size) {
				return false
			}
			for _, c := range f.Color {
				if !exprs.Finite(c) {
					return false
				}
			}
		}
	}
	return true
}

// clampColors clamps every color channel into [0,1].
func clampColors(inst *Instruction) {
	clamp4(&inst.Color)
	for _, line := range inst.Lines {
		for i := range line {
			clamp4(&line[i].Color)
		}
	}
}

func clamp4(c *[4]float64) {
	for i, v := range c {
		if v < 0 {
			c[i] = 0
		} else if v > 1 {
			c[i] = 1
		}
	}
}
