// scene/textrun.go

package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exprdeck/exprdeck/exprs"
)

// Fragment is one styled span of a text line as produced by the run
// parser. Size and Color are nil when the fragment inherits the enclosing
// object's text size / color; a Color list of three fields inherits the
// enclosing alpha channel.
//
// A fragment with a non-empty Placeholder has no literal text; it names a
// placeholder expression whose per-frame numeric value is formatted (and
// padded) into the fragment's text at resolve time.
type Fragment struct {
	Text   string
	Bold   bool
	Italic bool
	Font   string
	Size   *exprs.Compiled
	Color  *exprs.List

	Placeholder string
	PadChar     byte
	PadLeft     bool
	PadAmount   int
}

// runParser scans a single text line left to right, flushing a fragment
// whenever the active style changes.
//
// Markers:
//
//	**bold**            toggles bold (matched greedily before italic)
//	*italic*            toggles italic
//	~size-expr~...~~    overrides the size until the ~~ close marker
//	`r;g;b[;a]`...``    overrides the color until the `` close marker
//	_font_...__         switches to a named font until the __ close marker
//	{{name}}            a placeholder, optionally {C<N{name}} / {C>N{name}}
//	                    padding the value with char C to width N on the
//	                    left (<) or right (>)
//
// Markers of the same kind do not nest; different kinds nest independently.
// An unclosed span extends to the end of the line, which is recoverable
// rather than an error.
type runParser struct {
	line string
	pos  int

	buf   strings.Builder
	out   []Fragment
	style Fragment // Text field unused; carries the active style
}

// ParseLine parses one logical text line into its ordered fragments. An
// empty line yields a single empty fragment so vertical spacing survives
// layout.
func ParseLine(line string) ([]Fragment, error) {
	if line == "" {
		return []Fragment{{}}, nil
	}
	p := &runParser{line: line}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.out, nil
}

func (p *runParser) run() error {
	for p.pos < len(p.line) {
		c := p.line[p.pos]
		switch c {
		case '*':
			p.flush()
			if p.peek(1) == '*' {
				p.style.Bold = !p.style.Bold
				p.pos += 2
			} else {
				p.style.Italic = !p.style.Italic
				p.pos++
			}
		case '~':
			if p.peek(1) == '~' && p.style.Size != nil {
				p.flush()
				p.style.Size = nil
				p.pos += 2
				break
			}
			if p.style.Size != nil {
				// Same-kind markers do not nest; a lone ~ inside an open
				// size span is literal text.
				p.literal(c)
				break
			}
			src, ok := p.spanHeader('~')
			if !ok {
				p.literal(c)
				break
			}
			size, err := exprs.Compile(src, exprs.AxisH)
			if err != nil {
				return fmt.Errorf("size marker in %q: %w", p.line, err)
			}
			p.flush()
			p.style.Size = size
		case '`':
			if p.peek(1) == '`' && p.style.Color != nil {
				p.flush()
				p.style.Color = nil
				p.pos += 2
				break
			}
			if p.style.Color != nil {
				p.literal(c)
				break
			}
			src, ok := p.spanHeader('`')
			if !ok {
				p.literal(c)
				break
			}
			color, err := compileSpanColor(src)
			if err != nil {
				return fmt.Errorf("color marker in %q: %w", p.line, err)
			}
			p.flush()
			p.style.Color = color
		case '_':
			if p.peek(1) == '_' && p.style.Font != "" {
				p.flush()
				p.style.Font = ""
				p.pos += 2
				break
			}
			if p.style.Font != "" {
				p.literal(c)
				break
			}
			// A font span only opens when a __ close exists later on the
			// line; underscores in prose (snake_case_name) stay literal.
			rest := p.line[p.pos+1:]
			end := strings.IndexByte(rest, '_')
			if end <= 0 || !strings.Contains(rest[end+1:], "__") {
				p.literal(c)
				break
			}
			p.flush()
			p.style.Font = rest[:end]
			p.pos += end + 2
		case '{':
			name, padChar, padLeft, padAmount, ok := p.placeholder()
			if !ok {
				p.literal(c)
				break
			}
			p.flush()
			f := p.style
			f.Placeholder = name
			f.PadChar = padChar
			f.PadLeft = padLeft
			f.PadAmount = padAmount
			p.out = append(p.out, f)
		default:
			p.literal(c)
		}
	}
	p.flush()
	if len(p.out) == 0 {
		p.out = []Fragment{{}}
	}
	return nil
}

// spanHeader consumes "<delim>header<delim>" starting at the current
// position and returns the header. Reports false (consuming nothing) when
// no closing delimiter exists on the line, leaving the character literal.
func (p *runParser) spanHeader(delim byte) (string, bool) {
	end := strings.IndexByte(p.line[p.pos+1:], delim)
	if end <= 0 { // no close on this line, or an empty header
		return "", false
	}
	header := p.line[p.pos+1 : p.pos+1+end]
	p.pos += end + 2
	return header, true
}

// placeholder matches a placeholder marker at the current position:
// {{name}} for the bare form, or {C<N{name}} / {C>N{name}} with a pad
// char, direction and width. Reports false (consuming nothing) when the
// text is not a well-formed placeholder, leaving the brace literal.
func (p *runParser) placeholder() (name string, padChar byte, padLeft bool, padAmount int, ok bool) {
	s := p.line[p.pos:]
	padChar, padLeft = ' ', true

	i := 1 // index of the inner opening brace
	if len(s) > 1 && s[1] != '{' {
		if len(s) < 4 || s[1] == ':' {
			return
		}
		dir := s[2]
		if dir != '<' && dir != '>' {
			return
		}
		j := 3
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == 3 || j >= len(s) || s[j] != '{' {
			return
		}
		n, err := strconv.Atoi(s[3:j])
		if err != nil {
			return
		}
		padChar, padLeft, padAmount = s[1], dir == '<', n
		i = j
	}
	if i+1 >= len(s) || s[i] != '{' {
		return
	}
	end := strings.IndexByte(s[i+1:], '}')
	if end <= 0 { // no close, or an empty name
		return
	}
	nameEnd := i + 1 + end
	if nameEnd+1 >= len(s) || s[nameEnd+1] != '}' {
		return
	}
	name = s[i+1 : nameEnd]
	p.pos += nameEnd + 2
	ok = true
	return
}

func (p *runParser) peek(ahead int) byte {
	if p.pos+ahead >= len(p.line) {
		return 0
	}
	return p.line[p.pos+ahead]
}

func (p *runParser) literal(c byte) {
	p.buf.WriteByte(c)
	p.pos++
}

// flush emits the accumulated text under the active style.
func (p *runParser) flush() {
	if p.buf.Len() == 0 {
		return
	}
	f := p.style
	f.Text = p.buf.String()
	p.out = append(p.out, f)
	p.buf.Reset()
}

// compileSpanColor parses the color header of an inline span: three or
// four semicolon-separated channel expressions. With three, the alpha
// channel is inherited from the enclosing object at evaluation time.
func compileSpanColor(src string) (*exprs.List, error) {
	n := strings.Count(src, ";") + 1
	switch n {
	case 3:
		return exprs.CompileList(src, exprs.AxisNone, exprs.AxisNone, exprs.AxisNone)
	case 4:
		return exprs.CompileList(src, exprs.AxisNone, exprs.AxisNone, exprs.AxisNone, exprs.AxisNone)
	}
	return nil, fmt.Errorf("color span needs 3 or 4 channels, got %d", n)
}
