// render/raylib/raylib_renderer.go

// Package raylib renders scene instructions through raylib: windowing,
// input, font/texture caching and the actual draw calls.
package raylib

import (
	"fmt"
	"log"
	"sort"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/exprdeck/exprdeck/deck"
	"github.com/exprdeck/exprdeck/render"
	"github.com/exprdeck/exprdeck/scene"
)

const (
	// Raster size fonts are loaded at; glyphs are scaled down from this.
	fontBakeSize = 96

	// Horizontal advance added per italic fragment, as a fraction of the
	// text size. Raylib has no real italic shaping.
	italicAdvanceFactor = 0.10

	letterSpacing = 1.0
)

type fontPair struct {
	regular rl.Font
	bold    rl.Font
}

// Renderer is the raylib backend.
type Renderer struct {
	deck        *deck.Deck
	fonts       map[string]fontPair
	defaultFont fontPair
	textures    map[string]rl.Texture2D
	badTextures map[string]bool
	initialized bool
}

// NewRenderer creates a backend for the given deck. Fonts and textures are
// loaded in Init, after the window exists.
func NewRenderer(d *deck.Deck) *Renderer {
	return &Renderer{
		deck:        d,
		fonts:       make(map[string]fontPair),
		textures:    make(map[string]rl.Texture2D),
		badTextures: make(map[string]bool),
	}
}

func (r *Renderer) Init(config render.WindowConfig) error {
	if config.Resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(int32(config.Width), int32(config.Height), config.Title)
	if !rl.IsWindowReady() {
		return fmt.Errorf("raylib init: window creation failed")
	}
	rl.SetTargetFPS(60)

	r.defaultFont = fontPair{regular: rl.GetFontDefault(), bold: rl.GetFontDefault()}
	for _, name := range sortedFontNames(r.deck.Fonts) {
		paths := r.deck.Fonts[name]
		pair := fontPair{
			regular: rl.LoadFontEx(paths.Regular, fontBakeSize, nil),
			bold:    rl.LoadFontEx(paths.Bold, fontBakeSize, nil),
		}
		r.fonts[name] = pair
	}
	// Text blocks without a font name draw with the deck's first font.
	if names := sortedFontNames(r.deck.Fonts); len(names) > 0 {
		r.defaultFont = r.fonts[names[0]]
	}

	for _, path := range r.deck.ImagePaths() {
		tex := rl.LoadTexture(path)
		if tex.ID == 0 {
			log.Printf("WARN: raylib: failed to load texture %q", path)
			r.badTextures[path] = true
			continue
		}
		r.textures[path] = tex
	}

	r.initialized = true
	return nil
}

func (r *Renderer) ShouldClose() bool {
	return rl.IsWindowReady() && rl.WindowShouldClose()
}

func (r *Renderer) PollEvents() int {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	switch {
	case rl.IsKeyPressed(rl.KeyRight), rl.IsKeyPressed(rl.KeySpace), rl.IsKeyPressed(rl.KeyPageDown):
		return 1
	case rl.IsKeyPressed(rl.KeyLeft), rl.IsKeyPressed(rl.KeyPageUp):
		return -1
	}
	return 0
}

func (r *Renderer) BeginFrame() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
}

func (r *Renderer) EndFrame() {
	rl.EndDrawing()
}

func (r *Renderer) Size() (w, h float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

func (r *Renderer) Time() float64 {
	return rl.GetTime()
}

func (r *Renderer) Cleanup() {
	if !r.initialized {
		return
	}
	for _, tex := range r.textures {
		rl.UnloadTexture(tex)
	}
	for _, pair := range r.fonts {
		rl.UnloadFont(pair.regular)
		rl.UnloadFont(pair.bold)
	}
	rl.CloseWindow()
	r.initialized = false
}

func (r *Renderer) DrawFrame(instructions []scene.Instruction) {
	for i := range instructions {
		inst := &instructions[i]
		switch inst.Kind {
		case scene.KindRect:
			rl.DrawRectangleRec(rect32(inst), color32(inst.Color))
		case scene.KindRoundedRect:
			r.drawRoundedRect(inst)
		case scene.KindImage:
			r.drawImage(inst)
		case scene.KindText:
			r.drawText(inst)
		}
	}
}

func (r *Renderer) drawRoundedRect(inst *scene.Instruction) {
	// Raylib takes a roundness ratio of the shorter side, not a radius.
	short := math32.Min(float32(inst.W), float32(inst.H))
	if short <= 0 {
		return
	}
	roundness := math32.Min(math32.Max(float32(inst.Corner)/(short/2), 0), 1)
	segments := int32(math32.Max(float32(inst.Corner)/2, 6))
	rl.DrawRectangleRounded(rect32(inst), roundness, segments, color32(inst.Color))
}

func (r *Renderer) drawImage(inst *scene.Instruction) {
	tex, ok := r.textures[inst.ImagePath]
	if !ok {
		return
	}
	src := rl.NewRectangle(0, 0, float32(tex.Width), float32(tex.Height))
	rl.DrawTexturePro(tex, src, rect32(inst), rl.NewVector2(0, 0), 0, color32(inst.Color))
}

// span is one measured piece of a wrapped text row.
type span struct {
	text    string
	font    rl.Font
	size    float32
	color   rl.Color
	width   float32
	advance float32 // width plus any italic fudge
}

// drawText lays the resolved fragments out into wrapped rows and draws
// them: greedy word wrapping against the box width, rows justified by the
// text alignment multiplier, each span sitting on the row's baseline.
func (r *Renderer) drawText(inst *scene.Instruction) {
	boxW := float32(inst.W)
	defaultSize := float32(inst.LineHeight)
	alignX := float32(inst.TextAlign)

	y := float32(inst.Y)
	flushRow := func(row []span, rowH float32) float32 {
		var rowW float32
		for _, s := range row {
			rowW += s.advance
		}
		x := float32(inst.X) + (boxW-rowW)*alignX
		for _, s := range row {
			pos := rl.NewVector2(x+(s.advance-s.width), y+rowH-s.size)
			rl.DrawTextEx(s.font, s.text, pos, s.size, letterSpacing, s.color)
			x += s.advance
		}
		return rowH
	}

	for _, line := range inst.Lines {
		var (
			row  []span
			rowH = defaultSize
		)
		for _, frag := range line {
			font := r.fragmentFont(frag.Font, frag.Bold)
			size := float32(frag.Size)
			color := color32(frag.Color)
			for _, word := range splitWords(frag.Text) {
				w := rl.MeasureTextEx(font, word, size, letterSpacing).X
				adv := w
				if frag.Italic {
					adv += size * italicAdvanceFactor
				}
				rowW := float32(0)
				for _, s := range row {
					rowW += s.advance
				}
				if len(row) > 0 && rowW+adv > boxW {
					y += flushRow(row, rowH)
					row = row[:0]
					rowH = defaultSize
				}
				row = append(row, span{text: word, font: font, size: size, color: color, width: w, advance: adv})
				if size > rowH {
					rowH = size
				}
			}
		}
		y += flushRow(row, rowH)
	}
}

func (r *Renderer) fragmentFont(name string, bold bool) rl.Font {
	pair := r.defaultFont
	if name != "" {
		if p, ok := r.fonts[name]; ok {
			pair = p
		}
	}
	if bold {
		return pair.bold
	}
	return pair.regular
}

// splitWords cuts a fragment into space-terminated words so rows can wrap
// between them; the trailing space stays attached to its word.
func splitWords(s string) []string {
	if s == "" {
		return []string{""}
	}
	var words []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			words = append(words, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}

func sortedFontNames(fonts map[string]deck.FontPaths) []string {
	names := make([]string, 0, len(fonts))
	for name := range fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func rect32(inst *scene.Instruction) rl.Rectangle {
	return rl.NewRectangle(float32(inst.X), float32(inst.Y), float32(inst.W), float32(inst.H))
}

func color32(c [4]float64) rl.Color {
	return rl.NewColor(
		uint8(c[0]*255),
		uint8(c[1]*255),
		uint8(c[2]*255),
		uint8(c[3]*255),
	)
}
