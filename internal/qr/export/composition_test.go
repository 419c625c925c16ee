package export

import (
	"image"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/render"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

func TestFitLine(t *testing.T) {
	t.Parallel()

	face, err := regularFace(20)
	require.NoError(t, err)
	dc := gg.NewContext(10, 10)
	dc.SetFontFace(face)

	assert.Equal(t, "Alice", fitLine(dc, "Alice", 200))

	long := strings.Repeat("Invoice for May ", 20)
	got := fitLine(dc, long, 200)
	assert.True(t, strings.HasSuffix(got, ellipsis), got)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, ellipsis)))
	w, _ := dc.MeasureString(got)
	assert.LessOrEqual(t, w, 200.0)
	assert.NotContains(t, got, " "+ellipsis)

	assert.Equal(t, ellipsis, fitLine(dc, "WWWW", 1))
}

func TestLayoutTruncatesLongCaption(t *testing.T) {
	t.Parallel()

	m, err := encoder.Encode("https://mail.ylide.io/compose", encoder.Medium)
	require.NoError(t, err)
	surface, err := render.New(nil).Render(m, style.Default())
	require.NoError(t, err)

	black := style.SolidBackground(style.ColorOptions[3])
	frame, err := layout(Composition{
		Surface:  surface,
		Backdrop: black,
		Caption:  Caption{Subject: strings.Repeat("Quarterly invoice reminder ", 12)},
	})
	require.NoError(t, err)

	side := surface.Size()
	pad := (frame.Bounds().Dx() - side) / 2
	captionRows := image.Rect(0, pad+side, frame.Bounds().Dx(), frame.Bounds().Dy())
	lit, outside := 0, 0
	for y := captionRows.Min.Y; y < captionRows.Max.Y; y++ {
		for x := captionRows.Min.X; x < captionRows.Max.X; x++ {
			if frame.RGBAAt(x, y).R < 128 {
				continue
			}
			lit++
			if x < pad || x >= pad+side {
				outside++
			}
		}
	}
	assert.Positive(t, lit)
	assert.Zero(t, outside, "caption text spills past the code's width")
}
