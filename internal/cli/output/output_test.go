package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeText, false, ModeText},
	}
	for _, tt := range tests {
		r, _, _ := newTest(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.isTTY)
	}
}

func TestNonTTYHasNoANSI(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)
	r.Header(1, "Split")
	r.Success("done")
	r.StatusLine("a.sql", "failed", "exit 1")
	r.Warning("careful")
	r.Error("broken")

	assert.NotContains(t, out.String(), "\x1b[")
	assert.NotContains(t, errOut.String(), "\x1b[")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "✗ a.sql  exit 1")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ broken")
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"files": 3}))
	assert.Equal(t, "{\n  \"files\": 3\n}\n", out.String())
}

func TestTable(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		r.Table([]string{"File", "Type"}, [][]string{{"q_01.sql", "DDL"}})
		assert.Contains(t, out.String(), "| File | Type |")
		assert.Contains(t, out.String(), "| q_01.sql | DDL |")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		r.Table([]string{"File"}, [][]string{{"q_01.sql"}})
		assert.Contains(t, out.String(), "q_01.sql")
		assert.Contains(t, out.String(), "┌")
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Files", FormatHeader(2, "Files"))
	assert.Equal(t, "# Files", FormatHeader(0, "Files"))
	assert.Equal(t, "- a\n- b\n", FormatList([]string{"a", "b"}))
	assert.Empty(t, strings.TrimSpace(FormatList(nil)))
}

func TestHeaderAndList(t *testing.T) {
	md, out, _ := newTest(ModeMarkdown, false)
	md.Header(2, "Summary")
	md.List([]string{"a", "b"})
	assert.Equal(t, "## Summary\n- a\n- b\n", out.String())

	txt, out, _ := newTest(ModeText, false)
	txt.Header(2, "Summary")
	txt.List([]string{"a"})
	assert.Equal(t, "Summary\n  - a\n", out.String())
	assert.Equal(t, "Main Query", txt.Category("Main", "Main Query"))
	assert.Equal(t, "x", txt.Category("Unknown", "x"))
}
