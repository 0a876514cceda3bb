// deck/types.go

// Package deck loads a YAML slide document into scene slides. All property
// expressions are parsed here, ahead of playback; a malformed document
// fails the whole load with a diagnostic naming the slide, object and
// property, never a partially-built deck.
package deck

import "github.com/exprdeck/exprdeck/scene"

// FontPaths names the two font files a deck font consists of.
type FontPaths struct {
	Regular string
	Bold    string
}

// Deck is a fully loaded presentation: parse-ahead is done, everything
// here lives for the lifetime of the playback (or until a reload).
type Deck struct {
	Fonts  map[string]FontPaths
	Slides []*scene.Slide
}

// ImagePaths lists every image file referenced by the deck, for renderers
// that preload textures.
func (d *Deck) ImagePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(r scene.Renderable) {
		if img, ok := r.(*scene.Image); ok && !seen[img.Path()] {
			seen[img.Path()] = true
			paths = append(paths, img.Path())
		}
	}
	for _, s := range d.Slides {
		add(s.Background())
		for _, obj := range s.Content() {
			add(obj.R)
		}
	}
	return paths
}
