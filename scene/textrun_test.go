// scene/textrun_test.go

package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprdeck/exprdeck/exprs"
)

// styled filters out unstyled whitespace-only separators so tests can
// assert on the meaningful fragments.
func styled(frags []Fragment) []Fragment {
	var out []Fragment
	for _, f := range frags {
		plain := !f.Bold && !f.Italic && f.Size == nil && f.Color == nil && f.Font == ""
		if plain && len(trimSpaces(f.Text)) == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func trimSpaces(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

func TestParseLineMarkers(t *testing.T) {
	frags, err := ParseLine("*a* **b** ~2~c~~")
	require.NoError(t, err)

	got := styled(frags)
	require.Len(t, got, 3)

	assert.Equal(t, "a", got[0].Text)
	assert.True(t, got[0].Italic)
	assert.False(t, got[0].Bold)

	assert.Equal(t, "b", got[1].Text)
	assert.True(t, got[1].Bold)
	assert.False(t, got[1].Italic)

	assert.Equal(t, "c", got[2].Text)
	require.NotNil(t, got[2].Size)
	b := exprs.NewRegistry().Bindings()
	b.Set(0, 1, 1)
	size, err := got[2].Size.Eval(b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, size)
}

func TestParseLinePlain(t *testing.T) {
	frags, err := ParseLine("just some words")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "just some words", frags[0].Text)
	assert.False(t, frags[0].Bold)
	assert.False(t, frags[0].Italic)
}

func TestParseLineEmpty(t *testing.T) {
	frags, err := ParseLine("")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "", frags[0].Text)
}

func TestParseLineColorSpan(t *testing.T) {
	frags, err := ParseLine("`1;0;0`red`` plain")
	require.NoError(t, err)

	require.Len(t, frags, 2)
	assert.Equal(t, "red", frags[0].Text)
	require.NotNil(t, frags[0].Color)
	assert.Equal(t, 3, frags[0].Color.Len())
	assert.Equal(t, " plain", frags[1].Text)
	assert.Nil(t, frags[1].Color)
}

func TestParseLineColorSpanWithAlpha(t *testing.T) {
	frags, err := ParseLine("`1;0;0;0.5`faded``")
	require.NoError(t, err)

	got := styled(frags)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Color)
	assert.Equal(t, 4, got[0].Color.Len())
}

func TestParseLineColorSpanBadChannelCount(t *testing.T) {
	_, err := ParseLine("`1;0`x``")
	assert.Error(t, err)
}

func TestParseLineNestingAcrossKinds(t *testing.T) {
	// Bold inside a color span: both styles apply to the inner text.
	frags, err := ParseLine("`0;1;0`go **fast** now``")
	require.NoError(t, err)

	var bolds []Fragment
	for _, f := range frags {
		assert.NotNil(t, f.Color, "every fragment is inside the span: %q", f.Text)
		if f.Bold {
			bolds = append(bolds, f)
		}
	}
	require.Len(t, bolds, 1)
	assert.Equal(t, "fast", bolds[0].Text)
}

func TestParseLineUnclosedSpanExtendsToEnd(t *testing.T) {
	frags, err := ParseLine("before ~3~big until the end")
	require.NoError(t, err)

	require.Len(t, frags, 2)
	assert.Equal(t, "before ", frags[0].Text)
	assert.Nil(t, frags[0].Size)
	assert.Equal(t, "big until the end", frags[1].Text)
	assert.NotNil(t, frags[1].Size)
}

func TestParseLineFontSpan(t *testing.T) {
	frags, err := ParseLine("_mono_code__ words")
	require.NoError(t, err)

	require.Len(t, frags, 2)
	assert.Equal(t, "code", frags[0].Text)
	assert.Equal(t, "mono", frags[0].Font)
	assert.Equal(t, " words", frags[1].Text)
	assert.Equal(t, "", frags[1].Font)
}

func TestParseLinePlaceholder(t *testing.T) {
	frags, err := ParseLine("count: {{counter}} end")
	require.NoError(t, err)
	require.Len(t, frags, 3)

	assert.Equal(t, "count: ", frags[0].Text)

	ph := frags[1]
	assert.Equal(t, "", ph.Text)
	assert.Equal(t, "counter", ph.Placeholder)
	assert.Equal(t, byte(' '), ph.PadChar)
	assert.True(t, ph.PadLeft)
	assert.Equal(t, 0, ph.PadAmount)

	assert.Equal(t, " end", frags[2].Text)
}

func TestParseLinePlaceholderPadding(t *testing.T) {
	frags, err := ParseLine("{0<5{counter}}")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "counter", frags[0].Placeholder)
	assert.Equal(t, byte('0'), frags[0].PadChar)
	assert.True(t, frags[0].PadLeft)
	assert.Equal(t, 5, frags[0].PadAmount)

	frags, err = ParseLine("{.>3{n}}")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "n", frags[0].Placeholder)
	assert.Equal(t, byte('.'), frags[0].PadChar)
	assert.False(t, frags[0].PadLeft)
	assert.Equal(t, 3, frags[0].PadAmount)
}

func TestParseLinePlaceholderInheritsStyle(t *testing.T) {
	frags, err := ParseLine("**{{n}}**")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "n", frags[0].Placeholder)
	assert.True(t, frags[0].Bold)
}

func TestParseLineBracesLiteral(t *testing.T) {
	for _, line := range []string{"{ not a placeholder }", "{{}}", "a { b", "{x<{n}}"} {
		frags, err := ParseLine(line)
		require.NoError(t, err)
		require.Len(t, frags, 1, "line %q", line)
		assert.Equal(t, line, frags[0].Text)
		assert.Equal(t, "", frags[0].Placeholder)
	}
}

func TestParseLineUnderscoreProseStaysLiteral(t *testing.T) {
	// Without a __ close later on the line, underscores are plain text.
	for _, line := range []string{"snake_case_name", "_mono_code"} {
		frags, err := ParseLine(line)
		require.NoError(t, err)
		require.Len(t, frags, 1, "line %q", line)
		assert.Equal(t, line, frags[0].Text)
		assert.Equal(t, "", frags[0].Font)
	}
}

func TestParseLineLoneMarkersAreLiteral(t *testing.T) {
	frags, err := ParseLine("a ~ b ` c _ d")
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "a ~ b ` c _ d", frags[0].Text)
}

func TestParseLineBadSizeExpression(t *testing.T) {
	_, err := ParseLine("~1+~broken~~")
	assert.Error(t, err)
}
