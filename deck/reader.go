// deck/reader.go

package deck

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/exprdeck/exprdeck/exprs"
	"github.com/exprdeck/exprdeck/scene"
)

type document struct {
	Fonts  map[string][]string `yaml:"fonts"`
	Slides []slideDoc          `yaml:"slides"`
}

type slideDoc struct {
	Background yaml.Node   `yaml:"background"`
	Content    []yaml.Node `yaml:"content"`
}

// LoadFile reads and builds a deck document from a file.
func LoadFile(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("deck read: cannot open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a YAML deck document and builds the scene slides, parsing
// every property expression in the process.
func Load(r io.Reader) (*Deck, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("deck read: invalid document: %w", err)
	}
	if len(doc.Slides) == 0 {
		return nil, fmt.Errorf("deck read: document has no slides")
	}

	d := &Deck{Fonts: make(map[string]FontPaths, len(doc.Fonts))}
	for name, paths := range doc.Fonts {
		if len(paths) != 2 || paths[0] == "" || paths[1] == "" {
			log.Printf("WARN: deck read: font %q needs [regular, bold] paths, dropping it", name)
			continue
		}
		d.Fonts[name] = FontPaths{Regular: paths[0], Bold: paths[1]}
	}

	for i, sd := range doc.Slides {
		slide, err := buildSlide(d, sd, i)
		if err != nil {
			return nil, err
		}
		d.Slides = append(d.Slides, slide)
	}
	return d, nil
}

func buildSlide(d *Deck, sd slideDoc, idx int) (*scene.Slide, error) {
	if sd.Background.IsZero() {
		return nil, fmt.Errorf("deck read: slide %d: required field \"background\" is missing", idx)
	}
	bg, err := buildBackground(d, &sd.Background)
	if err != nil {
		return nil, fmt.Errorf("deck read: slide %d: background: %w", idx, err)
	}
	if sd.Content == nil {
		return nil, fmt.Errorf("deck read: slide %d: required field \"content\" is missing", idx)
	}

	slide := scene.NewSlide(bg)
	for j := range sd.Content {
		obj, z, err := buildObject(d, &sd.Content[j])
		if err != nil {
			return nil, fmt.Errorf("deck read: slide %d: object %d: %w", idx, j, err)
		}
		slide.Add(obj, z)
	}
	return slide, nil
}

// buildBackground accepts either a flat [r,g,b] color, which expands to a
// full-window rectangle, or a complete renderable object map.
func buildBackground(d *Deck, node *yaml.Node) (scene.Renderable, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var rgb []float64
		if err := node.Decode(&rgb); err != nil || len(rgb) != 3 {
			return nil, fmt.Errorf("flat background needs three numbers")
		}
		base, err := scene.NewBaseProperties(
			"0;0", "100%;100%",
			fmt.Sprintf("%g;%g;%g;1", rgb[0], rgb[1], rgb[2]),
			"TOP_LEFT")
		if err != nil {
			return nil, err
		}
		return scene.NewRect(base), nil
	case yaml.MappingNode:
		obj, _, err := buildObject(d, node)
		return obj, err
	}
	return nil, fmt.Errorf("background must be a [r,g,b] color or an object")
}

// fields wraps the key/value pairs of an object node, looking values up
// under any of several alternate key spellings.
type fields map[string]*yaml.Node

func objectFields(node *yaml.Node) (fields, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("object must be a mapping")
	}
	f := make(fields, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		f[node.Content[i].Value] = node.Content[i+1]
	}
	return f, nil
}

func (f fields) str(keys ...string) (string, error) {
	for _, k := range keys {
		if n, ok := f[k]; ok {
			var s string
			if err := n.Decode(&s); err != nil {
				return "", fmt.Errorf("%q must be a string", k)
			}
			return s, nil
		}
	}
	return "", fmt.Errorf("required property unspecified; accepted keys: %s", strings.Join(keys, ", "))
}

func (f fields) strOr(fallback string, keys ...string) string {
	s, err := f.str(keys...)
	if err != nil {
		return fallback
	}
	return s
}

func (f fields) intOr(fallback int, keys ...string) (int, error) {
	for _, k := range keys {
		if n, ok := f[k]; ok {
			var v int
			if err := n.Decode(&v); err != nil {
				return 0, fmt.Errorf("%q must be an integer", k)
			}
			return v, nil
		}
	}
	return fallback, nil
}

func (f fields) strMapOr(keys ...string) (map[string]string, error) {
	for _, k := range keys {
		if n, ok := f[k]; ok {
			var m map[string]string
			if err := n.Decode(&m); err != nil {
				return nil, fmt.Errorf("%q must map names to expression strings", k)
			}
			return m, nil
		}
	}
	return nil, nil
}

func (f fields) strList(keys ...string) ([]string, error) {
	for _, k := range keys {
		if n, ok := f[k]; ok {
			var v []string
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("%q must be a list of strings", k)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("required property unspecified; accepted keys: %s", strings.Join(keys, ", "))
}

// buildObject constructs one renderable from its object map and returns it
// with its z-order (default 0).
func buildObject(d *Deck, node *yaml.Node) (scene.Renderable, int, error) {
	f, err := objectFields(node)
	if err != nil {
		return nil, 0, err
	}

	kind, err := f.str("type")
	if err != nil {
		return nil, 0, err
	}

	z, err := f.intOr(0, "z", "z_index", "z-index")
	if err != nil {
		return nil, 0, err
	}

	var r scene.Renderable
	switch kind {
	case "rect":
		base, err := baseFrom(f)
		if err != nil {
			return nil, 0, err
		}
		r = scene.NewRect(base)
	case "rounded_rect":
		base, err := baseFrom(f)
		if err != nil {
			return nil, 0, err
		}
		corners, err := f.str("corners", "corner_rounding", "rounding", "radius", "corner_radius")
		if err != nil {
			return nil, 0, err
		}
		if r, err = scene.NewRoundedRect(base, corners); err != nil {
			return nil, 0, err
		}
	case "image":
		base, err := baseFrom(f)
		if err != nil {
			return nil, 0, err
		}
		path, err := f.str("path", "file", "file_path")
		if err != nil {
			return nil, 0, err
		}
		if r, err = scene.NewImage(base, path); err != nil {
			return nil, 0, err
		}
	case "text":
		r, err = textFrom(d, f)
		if err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, fmt.Errorf("unknown type %q (accepted: rect, rounded_rect, text, image)", kind)
	}
	return r, z, nil
}

func baseFrom(f fields) (*scene.BaseProperties, error) {
	pos, err := f.str("pos", "position")
	if err != nil {
		return nil, err
	}
	size, err := f.str("size")
	if err != nil {
		return nil, err
	}
	color, err := f.str("col", "color")
	if err != nil {
		return nil, err
	}
	align, err := f.str("align", "alignment")
	if err != nil {
		return nil, err
	}
	return scene.NewBaseProperties(pos, size, color, align)
}

// textFrom builds a text block. Its size pair is assembled from the
// wrapping width and the text height, which decks declare separately.
func textFrom(d *Deck, f fields) (scene.Renderable, error) {
	pos, err := f.str("pos", "position")
	if err != nil {
		return nil, err
	}
	width, err := f.str("width", "wrapping_width")
	if err != nil {
		return nil, err
	}
	height, err := f.str("size", "height", "text_size", "text_height")
	if err != nil {
		return nil, err
	}
	color, err := f.str("col", "color")
	if err != nil {
		return nil, err
	}
	align, err := f.str("align", "alignment")
	if err != nil {
		return nil, err
	}
	lines, err := f.strList("text", "texts", "lines")
	if err != nil {
		return nil, err
	}

	rawPlaceholders, err := f.strMapOr("placeholders")
	if err != nil {
		return nil, err
	}
	placeholders := make(map[string]*exprs.Compiled, len(rawPlaceholders))
	for name, src := range rawPlaceholders {
		c, err := exprs.Compile(src, exprs.AxisNone)
		if err != nil {
			return nil, fmt.Errorf("placeholder %q: %w", name, err)
		}
		placeholders[name] = c
	}

	font := f.strOr("", "font", "base_font")
	if font != "" {
		if _, ok := d.Fonts[font]; !ok {
			log.Printf("WARN: deck read: text references unknown font %q, using the default font", font)
			font = ""
		}
	}

	base, err := scene.NewBaseProperties(pos, width+";"+height, color, align)
	if err != nil {
		return nil, err
	}
	return scene.NewText(base, lines, font, f.strOr("", "text_align", "text_alignment"), placeholders)
}
