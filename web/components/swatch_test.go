package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwatchClass(t *testing.T) {
	t.Parallel()

	classes := strings.Fields(SwatchClass(Swatch{}, "w-12 rounded-md"))
	assert.Contains(t, classes, "w-12")
	assert.Contains(t, classes, "rounded-md")
	assert.NotContains(t, classes, "w-8")
	assert.NotContains(t, classes, "rounded-full")

	selected := strings.Fields(SwatchClass(Swatch{Selected: true}, ""))
	assert.Contains(t, selected, "border-white")
	assert.NotContains(t, selected, "border-transparent")
}

func TestSwatchGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := SwatchGroup("gradient", []Swatch{
		{Index: 0, Background: "#302b63", Selected: true},
		{Index: 1, Background: `x" onclick="y`},
	}, "").Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `name="gradient" value="0" checked`)
	assert.Contains(t, html, `name="gradient" value="1">`)
	assert.NotContains(t, html, `" onclick="`)
}
