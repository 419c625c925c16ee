package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestWriteMatrix(t *testing.T) {
	t.Parallel()

	m, err := encoder.Encode("HELLO", encoder.Low)
	require.NoError(t, err)

	var ascii bytes.Buffer
	require.NoError(t, writeMatrix(&ascii, m, 2, false))
	lines := strings.Split(strings.TrimSuffix(ascii.String(), "\n"), "\n")
	require.Len(t, lines, 25)
	assert.Equal(t, strings.Repeat(" ", 50), lines[0])
	assert.Equal(t, "    ##############", lines[2][:18])

	var blocks bytes.Buffer
	require.NoError(t, writeMatrix(&blocks, m, 2, true))
	lines = strings.Split(strings.TrimSuffix(blocks.String(), "\n"), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, strings.Repeat(" ", 25), lines[0])
	// Finder rows 0 and 1 share a line.
	assert.Equal(t, "  █▀▀▀▀▀█", string([]rune(lines[1])[:9]))
}

func TestMatrixCommand(t *testing.T) {
	out, err := run(t, "matrix", "--payload", "HELLO WORLD", "--ec", "Q")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 25)

	_, err = run(t, "matrix", "--payload", "x", "--ec", "Z")
	assert.ErrorIs(t, err, encoder.ErrInvalidLevel)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "qr.png")

	stdout, err := run(t, "render", "--name", "Alice", "--wallet", "0xABC", "--ec", "Q", "--gradient", "-1", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://mail.ylide.io/contacts?name=Alice&address=0xABC", result.GetText())
}

func TestRenderCommandErrors(t *testing.T) {
	_, err := run(t, "render")
	assert.ErrorContains(t, err, "--payload or --wallet")

	_, err = run(t, "render", "--payload", "x", "--logo", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorContains(t, err, "reading logo")

	_, err = run(t, "render", "--payload", "x", "--color", "17")
	assert.Error(t, err)
}
