package render

import "image"

// Surface is the raster produced by one Render call. It is never modified
// after Render returns.
type Surface struct {
	img        *image.RGBA
	moduleSize int
	quietZone  int
	modules    int
	logoErr    error
	logoRect   image.Rectangle
}

// Image returns the rendered pixels. Callers must treat them as read-only.
func (s *Surface) Image() *image.RGBA { return s.img }

// Size is the side of the surface in pixels.
func (s *Surface) Size() int { return s.img.Bounds().Dx() }

func (s *Surface) ModuleSize() int { return s.moduleSize }

func (s *Surface) QuietZone() int { return s.quietZone }

// Modules is the side of the encoded symbol in modules, excluding the
// quiet zone.
func (s *Surface) Modules() int { return s.modules }

// LogoErr reports why a requested logo was left out: ErrLogoLoad when it
// could not be decoded, ErrLogoOcclusion when no size fits the symbol's
// error correction. It is nil when no logo was requested or the logo was
// drawn.
func (s *Surface) LogoErr() error { return s.logoErr }

// LogoRect is the pixel box the logo was drawn into, empty when none was.
func (s *Surface) LogoRect() image.Rectangle { return s.logoRect }
