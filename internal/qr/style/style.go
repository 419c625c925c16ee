// Package style describes how a QR matrix is drawn: colours, module and
// eye shapes, the centre logo and the surface geometry.
package style

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

var (
	ErrInvalidStyle    = errors.New("style: invalid style")
	ErrInvalidColor    = errors.New("style: invalid color")
	ErrInvalidGradient = errors.New("style: invalid gradient")
)

// DotShape is the shape of a dark data module.
type DotShape int

const (
	Square DotShape = iota
	Rounded
	Dot
)

func (d DotShape) String() string {
	switch d {
	case Square:
		return "square"
	case Rounded:
		return "rounded"
	case Dot:
		return "dot"
	}
	return fmt.Sprintf("DotShape(%d)", int(d))
}

// ParseDotShape accepts "square", "rounded" and "dot" ("dots", "circle"
// are aliases of dot).
func ParseDotShape(s string) (DotShape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "square", "squares", "rectangle":
		return Square, nil
	case "rounded":
		return Rounded, nil
	case "dot", "dots", "circle":
		return Dot, nil
	}
	return 0, fmt.Errorf("%w: unknown dot shape %q", ErrInvalidStyle, s)
}

// CornerRadii rounds the corners of an eye, in modules.
type CornerRadii struct {
	TopLeft     float64
	TopRight    float64
	BottomRight float64
	BottomLeft  float64
}

// Scale multiplies every corner by f.
func (c CornerRadii) Scale(f float64) CornerRadii {
	return CornerRadii{c.TopLeft * f, c.TopRight * f, c.BottomRight * f, c.BottomLeft * f}
}

func (c CornerRadii) values() [4]float64 {
	return [4]float64{c.TopLeft, c.TopRight, c.BottomRight, c.BottomLeft}
}

// Background is a solid colour unless Gradient is set.
type Background struct {
	Solid    color.RGBA
	Gradient *Gradient
}

// SolidBackground returns a single-colour background.
func SolidBackground(c color.RGBA) Background { return Background{Solid: c} }

// GradientBackground returns a gradient background.
func GradientBackground(g Gradient) Background { return Background{Gradient: &g} }

// Logo is an image drawn over the centre of the symbol.
type Logo struct {
	// Data holds the encoded image: PNG, JPEG, GIF or SVG.
	Data []byte
	// WidthFraction is the logo side relative to the surface side.
	WidthFraction float64
	// ClearBehindLogo leaves the modules under the logo unpainted.
	ClearBehindLogo bool
}

// Eye indices into Style.EyeRadii.
const (
	EyeTopLeft = iota
	EyeTopRight
	EyeBottomLeft
)

const (
	DefaultDotScale   = 0.9
	DefaultQuietZone  = 4
	DefaultModuleSize = 10
	MaxLogoFraction   = 0.35
	maxEyeRadius      = 3.5
)

// Style is a pure value describing a rendering.
type Style struct {
	Foreground color.RGBA
	Background Background
	DotShape   DotShape
	// DotScale is the dot diameter relative to the module for DotShape
	// Dot. Zero means DefaultDotScale.
	DotScale float64
	// EyeRadii holds the corner radii of the top-left, top-right and
	// bottom-left finder eyes.
	EyeRadii   [3]CornerRadii
	Logo       *Logo
	QuietZone  int
	ModuleSize int
}

// Default is black square modules on white with square eyes.
func Default() Style {
	return Style{
		Foreground: color.RGBA{0, 0, 0, 255},
		Background: SolidBackground(color.RGBA{255, 255, 255, 255}),
		DotShape:   Square,
		DotScale:   DefaultDotScale,
		QuietZone:  DefaultQuietZone,
		ModuleSize: DefaultModuleSize,
	}
}

// EffectiveDotScale resolves the zero value to DefaultDotScale.
func (s Style) EffectiveDotScale() float64 {
	if s.DotScale == 0 {
		return DefaultDotScale
	}
	return s.DotScale
}

// SurfaceSide is the pixel side of a surface for a matrix of the given
// module count.
func (s Style) SurfaceSide(matrixSize int) int {
	return (matrixSize + 2*s.QuietZone) * s.ModuleSize
}

// Validate reports every out-of-range field, joined, each wrapping
// ErrInvalidStyle.
func (s Style) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidStyle}, args...)...))
	}

	if s.ModuleSize < 1 {
		bad("module size %d must be at least 1", s.ModuleSize)
	}
	if s.QuietZone < 0 {
		bad("quiet zone %d must not be negative", s.QuietZone)
	}
	if s.DotShape < Square || s.DotShape > Dot {
		bad("unknown dot shape %d", int(s.DotShape))
	}
	if ds := s.EffectiveDotScale(); ds <= 0.5 || ds > 1 {
		bad("dot scale %v outside (0.5, 1]", s.DotScale)
	}
	for i, eye := range s.EyeRadii {
		for _, r := range eye.values() {
			if r < 0 || r > maxEyeRadius {
				bad("eye %d radius %v outside [0, %v]", i, r, maxEyeRadius)
				break
			}
		}
	}
	if g := s.Background.Gradient; g != nil {
		if err := g.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidStyle, err))
		}
	}
	if s.Logo != nil {
		if f := s.Logo.WidthFraction; f <= 0 || f > MaxLogoFraction {
			bad("logo width fraction %v outside (0, %v]", f, MaxLogoFraction)
		}
	}
	return errors.Join(errs...)
}
