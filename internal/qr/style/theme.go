package style

import (
	"fmt"
	"image/color"
)

// ColorOptions are the selectable foreground colours.
var ColorOptions = mustColors(
	"#302b63",
	"#FF3070",
	"#5852c7",
	"#000000",
	"#ff758c",
	"#870000",
)

// GradientOptions are the selectable backdrop gradients.
var GradientOptions = mustGradients(
	"linear-gradient(to right, #0f0c29, #302b63, #24243e)",
	"linear-gradient(to right, #8e2de2, #4a00e0)",
	"linear-gradient(to right, #c79081 , #dfa579)",
	"linear-gradient(to right, #434343 0%, black 100%)",
	"linear-gradient(to right, #870000, #190a05)",
	"linear-gradient(to right, #e96443, #904e95)",
	"linear-gradient( 0.6deg, #09203f, #537895)",
	"linear-gradient(25deg,#ff758c ,#ff7eb3)",
	"linear-gradient(25deg,#93a5cf,#e4efe9 50%)",
)

// ThemedEyeRadii round three corners of each eye, leaving the corner
// that faces the symbol's centre square.
var ThemedEyeRadii = [3]CornerRadii{
	{TopLeft: 2.5, TopRight: 2.5, BottomRight: 0, BottomLeft: 2.5},
	{TopLeft: 2.5, TopRight: 2.5, BottomRight: 2.5, BottomLeft: 0},
	{TopLeft: 2.5, TopRight: 0, BottomRight: 2.5, BottomLeft: 2.5},
}

// ThemedLogoFraction is the default logo width relative to the surface.
const ThemedLogoFraction = 1.0 / 6

// ColorOption returns the i-th foreground colour.
func ColorOption(i int) (color.RGBA, error) {
	if i < 0 || i >= len(ColorOptions) {
		return color.RGBA{}, fmt.Errorf("%w: colour option %d of %d", ErrInvalidColor, i, len(ColorOptions))
	}
	return ColorOptions[i], nil
}

// GradientOption returns the i-th backdrop gradient.
func GradientOption(i int) (Gradient, error) {
	if i < 0 || i >= len(GradientOptions) {
		return Gradient{}, fmt.Errorf("%w: gradient option %d of %d", ErrInvalidGradient, i, len(GradientOptions))
	}
	return GradientOptions[i], nil
}

// Themed is the branded look: dot modules in fg on white, with rounded
// eyes.
func Themed(fg color.RGBA) Style {
	s := Default()
	s.Foreground = fg
	s.DotShape = Dot
	s.EyeRadii = ThemedEyeRadii
	return s
}

func mustColors(hex ...string) []color.RGBA {
	out := make([]color.RGBA, len(hex))
	for i, h := range hex {
		c, err := ParseColor(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

func mustGradients(css ...string) []Gradient {
	out := make([]Gradient, len(css))
	for i, s := range css {
		g, err := ParseLinearGradient(s)
		if err != nil {
			panic(err)
		}
		out[i] = g
	}
	return out
}
