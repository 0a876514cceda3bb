// internal/app/run.go

// Package app drives a loaded deck through a rendering backend: flag
// handling, registry freeze, the pre-flight resolution pass and the main
// loop with slide navigation.
package app

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exprdeck/exprdeck/deck"
	"github.com/exprdeck/exprdeck/exprs"
	"github.com/exprdeck/exprdeck/render"
)

// Run plays the deck through the renderer. Any additional expression
// functions must be registered on the default registry before Run is
// called; the registry freezes here.
func Run(d *deck.Deck, renderer render.Renderer) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := render.DefaultWindowConfig()
	if err := renderer.Init(cfg); err != nil {
		renderer.Cleanup()
		log.Fatalf("ERROR: Failed to initialize renderer: %v", err)
	}
	defer renderer.Cleanup()

	// Pre-flight: every expression must resolve now that all function
	// registrations are in. Unresolved names are fatal before playback
	// instead of flickering mid-presentation.
	bindings := exprs.DefaultRegistry().Bindings()
	for i, slide := range d.Slides {
		if err := slide.Verify(bindings); err != nil {
			log.Fatalf("ERROR: slide %d: %v", i, err)
		}
	}

	log.Printf("INFO: deck verified, %d slides. Entering main loop...", len(d.Slides))

	current := 0
	slideStart := renderer.Time()

	for !renderer.ShouldClose() {
		if delta := renderer.PollEvents(); delta != 0 {
			next := wrapSlide(current, delta, len(d.Slides))
			if next != current {
				// t resets to zero exactly on the slide boundary, between
				// frames.
				current = next
				slideStart = renderer.Time()
			}
		}

		w, h := renderer.Size()
		t := renderer.Time() - slideStart
		instructions := d.Slides[current].Compose(bindings, t, w, h)

		renderer.BeginFrame()
		renderer.DrawFrame(instructions)
		renderer.EndFrame()
	}

	log.Println("INFO: Exiting.")
}

// wrapSlide advances the slide index by delta, wrapping around at both
// ends of the deck.
func wrapSlide(current, delta, count int) int {
	next := (current + delta) % count
	if next < 0 {
		next += count
	}
	return next
}

// LoadFromFlags parses the command line and loads the deck document.
func LoadFromFlags() *deck.Deck {
	path := flag.String("file", "", "Path to the deck document to present")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Usage: exprdeck -file <deck.yaml>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Printf("INFO: Loading deck: %s", *path)
	d, err := deck.LoadFile(*path)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	log.Printf("INFO: Parsed deck OK - Slides=%d Fonts=%d", len(d.Slides), len(d.Fonts))
	return d
}
