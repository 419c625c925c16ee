package style

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Stop is one colour stop of a gradient. Offset runs from 0 at the start
// of the gradient line to 1 at its end.
type Stop struct {
	Offset float64
	Color  color.RGBA
}

// Gradient is a linear gradient in CSS terms: AngleDeg 0 points to the
// top, 90 to the right, measured clockwise.
type Gradient struct {
	AngleDeg float64
	Stops    []Stop
}

func (g Gradient) validate() error {
	if len(g.Stops) == 0 {
		return fmt.Errorf("%w: no colour stops", ErrInvalidGradient)
	}
	if math.IsNaN(g.AngleDeg) || math.IsInf(g.AngleDeg, 0) {
		return fmt.Errorf("%w: angle %v", ErrInvalidGradient, g.AngleDeg)
	}
	prev := 0.0
	for i, s := range g.Stops {
		if s.Offset < 0 || s.Offset > 1 {
			return fmt.Errorf("%w: stop %d offset %v outside [0, 1]", ErrInvalidGradient, i, s.Offset)
		}
		if s.Offset < prev {
			return fmt.Errorf("%w: stop %d out of order", ErrInvalidGradient, i)
		}
		prev = s.Offset
	}
	return nil
}

// ColorAt samples the gradient at t along its line. Positions before the
// first stop or after the last take that stop's colour.
func (g Gradient) ColorAt(t float64) color.RGBA {
	if len(g.Stops) == 0 {
		return Transparent
	}
	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if t <= first.Offset {
		return first.Color
	}
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		return lerpColor(a.Color, b.Color, (t-a.Offset)/span)
	}
	return last.Color
}

// Line returns the start and end points of the gradient line for a w×h
// box, following CSS: the line passes through the centre and its length
// makes the corners land exactly on offsets 0 and 1.
func (g Gradient) Line(w, h float64) (x0, y0, x1, y1 float64) {
	rad := g.AngleDeg * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
	cx, cy := w/2, h/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// CSS renders the gradient as a linear-gradient() expression.
func (g Gradient) CSS() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "linear-gradient(%sdeg", strconv.FormatFloat(g.AngleDeg, 'f', -1, 64))
	for _, s := range g.Stops {
		fmt.Fprintf(&sb, ", %s %s%%", Hex(s.Color), strconv.FormatFloat(s.Offset*100, 'f', -1, 64))
	}
	sb.WriteString(")")
	return sb.String()
}

var sideAngles = map[string]float64{
	"to top":          0,
	"to top right":    45,
	"to right top":    45,
	"to right":        90,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom":       180,
	"to bottom left":  225,
	"to left bottom":  225,
	"to left":         270,
	"to top left":     315,
	"to left top":     315,
}

// ParseLinearGradient parses a CSS linear-gradient() expression such as
// "linear-gradient(25deg, #93a5cf, #e4efe9 50%)". The direction is
// optional and defaults to "to bottom". Stops without a position are
// spread evenly between their positioned neighbours.
func ParseLinearGradient(css string) (Gradient, error) {
	v := strings.TrimSpace(css)
	const prefix = "linear-gradient("
	if !strings.HasPrefix(strings.ToLower(v), prefix) || !strings.HasSuffix(v, ")") {
		return Gradient{}, fmt.Errorf("%w: %q", ErrInvalidGradient, css)
	}
	args := strings.Split(v[len(prefix):len(v)-1], ",")

	g := Gradient{AngleDeg: 180}
	first := strings.ToLower(strings.Join(strings.Fields(args[0]), " "))
	if angle, ok := sideAngles[first]; ok {
		g.AngleDeg = angle
		args = args[1:]
	} else if deg, ok := strings.CutSuffix(first, "deg"); ok {
		a, err := strconv.ParseFloat(deg, 64)
		if err != nil {
			return Gradient{}, fmt.Errorf("%w: angle %q", ErrInvalidGradient, args[0])
		}
		g.AngleDeg = a
		args = args[1:]
	}
	if len(args) == 0 {
		return Gradient{}, fmt.Errorf("%w: no colour stops in %q", ErrInvalidGradient, css)
	}

	positions := make([]float64, len(args))
	for i, arg := range args {
		fields := strings.Fields(arg)
		if len(fields) == 0 || len(fields) > 2 {
			return Gradient{}, fmt.Errorf("%w: stop %q", ErrInvalidGradient, arg)
		}
		c, err := ParseColor(fields[0])
		if err != nil {
			return Gradient{}, fmt.Errorf("%w: %w", ErrInvalidGradient, err)
		}
		positions[i] = math.NaN()
		if len(fields) == 2 {
			pct, ok := strings.CutSuffix(fields[1], "%")
			if !ok {
				return Gradient{}, fmt.Errorf("%w: stop position %q", ErrInvalidGradient, fields[1])
			}
			p, err := strconv.ParseFloat(pct, 64)
			if err != nil {
				return Gradient{}, fmt.Errorf("%w: stop position %q", ErrInvalidGradient, fields[1])
			}
			positions[i] = p / 100
		}
		g.Stops = append(g.Stops, Stop{Color: c})
	}
	resolvePositions(positions)
	for i := range g.Stops {
		g.Stops[i].Offset = math.Min(math.Max(positions[i], 0), 1)
	}
	return g, nil
}

// resolvePositions fills NaN entries: the first defaults to 0, the last
// to 1, runs in between are spaced evenly, and positions never decrease.
func resolvePositions(p []float64) {
	if math.IsNaN(p[0]) {
		p[0] = 0
	}
	if last := len(p) - 1; last > 0 && math.IsNaN(p[last]) {
		p[last] = 1
	}
	highest := p[0]
	for i := 1; i < len(p); i++ {
		if math.IsNaN(p[i]) {
			continue
		}
		if p[i] < highest {
			p[i] = highest
		}
		highest = p[i]
	}
	for i := 1; i < len(p); {
		if !math.IsNaN(p[i]) {
			i++
			continue
		}
		j := i
		for math.IsNaN(p[j]) {
			j++
		}
		step := (p[j] - p[i-1]) / float64(j-i+1)
		for k := i; k < j; k++ {
			p[k] = p[i-1] + step*float64(k-i+1)
		}
		i = j
	}
}
