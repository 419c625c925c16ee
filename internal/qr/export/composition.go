package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/render"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

// Caption is the info panel drawn under the code. Empty lines are skipped.
type Caption struct {
	Name    string
	Wallet  string
	Subject string
}

func (c Caption) lines() []string {
	var out []string
	for _, l := range []string{c.Name, c.Wallet, c.Subject} {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Composition is everything shown in the live view: the rendered code on
// a themed backdrop with an optional caption.
type Composition struct {
	Surface  *render.Surface
	Backdrop style.Background
	Caption  Caption
}

var (
	captionText  = color.RGBA{255, 255, 255, 255}
	captionPanel = color.RGBA{46, 46, 46, 46} // white at 18%, premultiplied
)

// layout flattens a composition into a new frame.
func layout(c Composition) (*image.RGBA, error) {
	if c.Surface == nil {
		return nil, fmt.Errorf("%w: composition has no surface", ErrCapture)
	}
	qr := c.Surface.Image()
	side := c.Surface.Size()
	pad := max(side/8, 16)
	fontSize := math.Max(12, float64(side)/18)
	lineHeight := fontSize * 1.6
	lines := c.Caption.lines()

	width := side + 2*pad
	height := side + 2*pad
	captionTop := float64(side + pad + pad/2)
	if len(lines) > 0 {
		height += pad/2 + int(math.Ceil(lineHeight*float64(len(lines))+lineHeight/2))
	}

	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(frame)

	if g := c.Backdrop.Gradient; g != nil {
		x0, y0, x1, y1 := g.Line(float64(width), float64(height))
		grad := gg.NewLinearGradient(x0, y0, x1, y1)
		for _, s := range g.Stops {
			grad.AddColorStop(s.Offset, s.Color)
		}
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(width), float64(height))
		dc.Fill()
	} else {
		dc.SetColor(c.Backdrop.Solid)
		dc.Clear()
	}

	dc.DrawImage(qr, pad, pad)

	if len(lines) == 0 {
		return frame, nil
	}
	face, err := regularFace(fontSize)
	if err != nil {
		return nil, err
	}
	panelH := lineHeight*float64(len(lines)) + lineHeight/4
	dc.SetColor(captionPanel)
	dc.DrawRoundedRectangle(float64(pad), captionTop-lineHeight/8, float64(side), panelH, lineHeight/3)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetColor(captionText)
	maxWidth := float64(side) - fontSize
	for i, l := range lines {
		y := captionTop + lineHeight*(float64(i)+0.5)
		dc.DrawStringAnchored(fitLine(dc, l, maxWidth), float64(width)/2, y, 0.5, 0.35)
	}
	return frame, nil
}

const ellipsis = "…"

// fitLine shortens l, ending it with an ellipsis, until it measures at
// most maxWidth in the current font.
func fitLine(dc *gg.Context, l string, maxWidth float64) string {
	if w, _ := dc.MeasureString(l); w <= maxWidth {
		return l
	}
	runes := []rune(l)
	for n := len(runes) - 1; n > 0; n-- {
		s := strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + ellipsis
		if w, _ := dc.MeasureString(s); w <= maxWidth {
			return s
		}
	}
	return ellipsis
}

var (
	fontOnce sync.Once
	fontErr  error
	goFont   *opentype.Font
)

// regularFace returns a new Go Regular face at size. Faces are not safe
// for concurrent use; the parsed font is.
func regularFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parsing goregular: %w", fontErr)
	}
	f, err := opentype.NewFace(goFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face (size=%.1f): %w", size, err)
	}
	return f, nil
}
