// render/render.go

// Package render defines the backend interface the presentation loop draws
// through. Backends consume the per-frame instruction set produced by the
// scene compositor; they own windowing, input, fonts and textures.
package render

import "github.com/exprdeck/exprdeck/scene"

// Renderer is the contract every rendering backend implements.
type Renderer interface {
	Init(config WindowConfig) error
	ShouldClose() bool

	// PollEvents processes pending input and returns the requested slide
	// delta (usually -1, 0 or +1).
	PollEvents() int

	BeginFrame()
	DrawFrame(instructions []scene.Instruction)
	EndFrame()

	// Size returns the current window dimensions in pixels; it may change
	// between frames on resize.
	Size() (w, h float64)

	// Time returns monotonically increasing seconds since Init.
	Time() float64

	Cleanup()
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "exprdeck",
		Resizable: true,
	}
}
