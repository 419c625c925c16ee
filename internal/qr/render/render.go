// Package render paints an encoded QR matrix according to a style.
package render

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/cristianadrielbraun/qrcompose/internal/logger"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

// Renderer turns matrices into surfaces. It is safe for concurrent use;
// the only shared state is the decoded-logo cache.
type Renderer struct {
	logger *slog.Logger
	logos  *logoCache
}

// New returns a Renderer logging through l. A nil logger discards.
func New(l *slog.Logger) *Renderer {
	if l == nil {
		l = logger.Discard()
	}
	return &Renderer{logger: l, logos: newLogoCache()}
}

// Render draws m with s onto a fresh surface, back to front: background,
// data modules, finder eyes, then the logo. Invalid styles fail with
// style.ErrInvalidStyle; an undecodable logo only degrades the result.
// The logo is shrunk below its requested width when the modules it hides
// would exceed the symbol's error correction.
func (r *Renderer) Render(m *encoder.Matrix, s style.Style) (*Surface, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil matrix", style.ErrInvalidStyle)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	side := s.SurfaceSide(m.Size())
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	dc := gg.NewContextForRGBA(img)
	surface := &Surface{img: img, moduleSize: s.ModuleSize, quietZone: s.QuietZone, modules: m.Size()}

	var logo image.Image
	if s.Logo != nil {
		var err error
		if logo, err = r.logos.load(s.Logo.Data); err != nil {
			surface.logoErr = fmt.Errorf("%w: %w", ErrLogoLoad, err)
			r.logger.Warn("rendering without logo", "error", err, "bytes", len(s.Logo.Data))
		}
	}

	var logoRect image.Rectangle
	if logo != nil {
		logoRect = fitLogoBox(m, s, side)
		if logoRect.Empty() {
			logo = nil
			surface.logoErr = ErrLogoOcclusion
			r.logger.Warn("rendering without logo", "error", ErrLogoOcclusion, "version", m.Version())
		}
	}
	surface.logoRect = logoRect

	paintBackground(dc, s.Background, side)
	paintModules(dc, m, s, logoRect, s.Logo != nil && s.Logo.ClearBehindLogo && logo != nil)
	paintEyes(dc, m, s)
	if logo != nil {
		scaled := scaleLogo(logo, logoRect.Dx())
		c := logoRect.Min.Add(logoRect.Max).Div(2)
		dc.DrawImageAnchored(scaled, c.X, c.Y, 0.5, 0.5)
	}

	r.logger.Debug("rendered matrix",
		"version", m.Version(),
		"level", m.Level().String(),
		"shape", s.DotShape.String(),
		"side", side,
	)
	return surface, nil
}

// logoBox is the centred square covered by the logo.
func logoBox(side int, fraction float64) image.Rectangle {
	n := int(math.Round(fraction * float64(side)))
	n = max(n, 1)
	off := (side - n) / 2
	return image.Rect(off, off, off+n, off+n)
}

// logoErrorMargin is the number of correctable codewords per block kept
// free for scanning noise when sizing the logo.
const logoErrorMargin = 1

// fitLogoBox starts from the requested logo box and shrinks it one module
// at a time until no Reed-Solomon block has more codewords under the logo
// than it can repair. It returns the empty rectangle when even the
// smallest box is too much.
func fitLogoBox(m *encoder.Matrix, s style.Style, side int) image.Rectangle {
	budget := m.Correctable() - logoErrorMargin
	for box := logoBox(side, s.Logo.WidthFraction); !box.Empty(); box = box.Inset(max(s.ModuleSize/2, 1)) {
		if withinBudget(m.Damage(covers(s, box)), budget) {
			return box
		}
	}
	return image.Rectangle{}
}

// covers reports the modules whose cell overlaps box.
func covers(s style.Style, box image.Rectangle) func(x, y int) bool {
	return func(x, y int) bool {
		px := (x + s.QuietZone) * s.ModuleSize
		py := (y + s.QuietZone) * s.ModuleSize
		return image.Rect(px, py, px+s.ModuleSize, py+s.ModuleSize).Overlaps(box)
	}
}

func withinBudget(damage []int, budget int) bool {
	for _, n := range damage {
		if n > budget {
			return false
		}
	}
	return true
}

// scaleLogo resizes logo, keeping its aspect ratio, so its longer side is
// side pixels. Small logos are scaled up.
func scaleLogo(logo image.Image, side int) image.Image {
	b := logo.Bounds()
	if b.Dx() >= b.Dy() {
		return imaging.Resize(logo, side, 0, imaging.Lanczos)
	}
	return imaging.Resize(logo, 0, side, imaging.Lanczos)
}

func paintBackground(dc *gg.Context, bg style.Background, side int) {
	if bg.Gradient == nil {
		dc.SetColor(bg.Solid)
		dc.Clear()
		return
	}
	x0, y0, x1, y1 := bg.Gradient.Line(float64(side), float64(side))
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for _, stop := range bg.Gradient.Stops {
		grad.AddColorStop(stop.Offset, stop.Color)
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(side), float64(side))
	dc.Fill()
}

// clearable reports whether a module may be left unpainted under the
// logo. Modules the scanner needs to lock on are always kept.
func clearable(r encoder.Region) bool {
	switch r {
	case encoder.RegionData, encoder.RegionAlignment:
		return true
	}
	return false
}

func paintModules(dc *gg.Context, m *encoder.Matrix, s style.Style, logo image.Rectangle, clearLogo bool) {
	ms := float64(s.ModuleSize)
	radius := s.EffectiveDotScale() * ms / 2

	for y := 0; y < m.Size(); y++ {
		for x := 0; x < m.Size(); x++ {
			if !m.IsDark(x, y) || m.Region(x, y) == encoder.RegionFinder {
				continue
			}
			px := (x + s.QuietZone) * s.ModuleSize
			py := (y + s.QuietZone) * s.ModuleSize
			if clearLogo && clearable(m.Region(x, y)) &&
				image.Rect(px, py, px+s.ModuleSize, py+s.ModuleSize).Overlaps(logo) {
				continue
			}

			fx, fy := float64(px), float64(py)
			switch s.DotShape {
			case style.Rounded:
				dc.DrawRoundedRectangle(fx, fy, ms, ms, ms/4)
			case style.Dot:
				dc.DrawCircle(fx+ms/2, fy+ms/2, radius)
			default:
				dc.DrawRectangle(fx, fy, ms, ms)
			}
		}
	}
	dc.SetColor(s.Foreground)
	dc.Fill()
}

func paintEyes(dc *gg.Context, m *encoder.Matrix, s style.Style) {
	ms := float64(s.ModuleSize)
	q := float64(s.QuietZone)
	n := float64(m.Size())
	origins := [3][2]float64{
		style.EyeTopLeft:    {q, q},
		style.EyeTopRight:   {q + n - 7, q},
		style.EyeBottomLeft: {q, q + n - 7},
	}

	dc.SetColor(s.Foreground)
	for i, o := range origins {
		radii := s.EyeRadii[i]
		x, y := o[0]*ms, o[1]*ms

		// Ring: outer 7×7 minus the 5×5 hole, filled even-odd.
		roundedRect(dc, x, y, 7*ms, 7*ms, radii.Scale(ms))
		roundedRect(dc, x+ms, y+ms, 5*ms, 5*ms, shrink(radii, 1).Scale(ms))
		dc.SetFillRule(gg.FillRuleEvenOdd)
		dc.Fill()
		dc.SetFillRule(gg.FillRuleWinding)

		roundedRect(dc, x+2*ms, y+2*ms, 3*ms, 3*ms, radii.Scale(3.0/7*ms))
		dc.Fill()
	}
}

// shrink reduces every radius by d, clamping at zero.
func shrink(c style.CornerRadii, d float64) style.CornerRadii {
	return style.CornerRadii{
		TopLeft:     math.Max(c.TopLeft-d, 0),
		TopRight:    math.Max(c.TopRight-d, 0),
		BottomRight: math.Max(c.BottomRight-d, 0),
		BottomLeft:  math.Max(c.BottomLeft-d, 0),
	}
}

// roundedRect adds a rectangle sub-path with independent corner radii,
// each clamped to half the shorter side.
func roundedRect(dc *gg.Context, x, y, w, h float64, r style.CornerRadii) {
	limit := math.Min(w, h) / 2
	tl := math.Min(r.TopLeft, limit)
	tr := math.Min(r.TopRight, limit)
	br := math.Min(r.BottomRight, limit)
	bl := math.Min(r.BottomLeft, limit)

	dc.NewSubPath()
	dc.MoveTo(x+tl, y)
	dc.LineTo(x+w-tr, y)
	if tr > 0 {
		dc.DrawArc(x+w-tr, y+tr, tr, -math.Pi/2, 0)
	}
	dc.LineTo(x+w, y+h-br)
	if br > 0 {
		dc.DrawArc(x+w-br, y+h-br, br, 0, math.Pi/2)
	}
	dc.LineTo(x+bl, y+h)
	if bl > 0 {
		dc.DrawArc(x+bl, y+h-bl, bl, math.Pi/2, math.Pi)
	}
	dc.LineTo(x, y+tl)
	if tl > 0 {
		dc.DrawArc(x+tl, y+tl, tl, math.Pi, 3*math.Pi/2)
	}
	dc.ClosePath()
}
