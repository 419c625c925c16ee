package encoder

import "github.com/yeqown/reedsolomon/binary"

const emptyCell int8 = -1

// grid is the mutable working copy of a symbol during construction.
type grid struct {
	size    int
	cells   []int8 // emptyCell, 0 (light) or 1 (dark)
	regions []Region
}

func newGrid(size int) *grid {
	g := &grid{
		size:    size,
		cells:   make([]int8, size*size),
		regions: make([]Region, size*size),
	}
	for i := range g.cells {
		g.cells[i] = emptyCell
	}
	return g
}

func (g *grid) clone() *grid {
	c := &grid{
		size:    g.size,
		cells:   make([]int8, len(g.cells)),
		regions: make([]Region, len(g.regions)),
	}
	copy(c.cells, g.cells)
	copy(c.regions, g.regions)
	return c
}

func (g *grid) isEmpty(x, y int) bool { return g.cells[y*g.size+x] == emptyCell }

func (g *grid) set(x, y int, dark bool, r Region) {
	i := y*g.size + x
	if dark {
		g.cells[i] = 1
	} else {
		g.cells[i] = 0
	}
	g.regions[i] = r
}

// modules converts the grid into final module values; any cell left empty
// is light.
func (g *grid) modules() []Module {
	out := make([]Module, len(g.cells))
	for i, c := range g.cells {
		if c == 1 {
			out[i] = Dark
		}
	}
	return out
}

var finderPattern = [7]uint8{
	0b1111111,
	0b1000001,
	0b1011101,
	0b1011101,
	0b1011101,
	0b1000001,
	0b1111111,
}

var alignmentPattern = [5]uint8{
	0b11111,
	0b10001,
	0b10101,
	0b10001,
	0b11111,
}

// layoutFunctionPatterns places everything that does not depend on the
// data or the mask, and reserves the format-information modules.
func layoutFunctionPatterns(v *versionSpec) *grid {
	size := v.size()
	g := newGrid(size)

	for _, origin := range [][2]int{{0, 0}, {size - 7, 0}, {0, size - 7}} {
		for dy := 0; dy < 7; dy++ {
			for dx := 0; dx < 7; dx++ {
				dark := finderPattern[dy]&(1<<uint(6-dx)) != 0
				g.set(origin[0]+dx, origin[1]+dy, dark, RegionFinder)
			}
		}
	}

	// Separators: one light module around each finder on its inner sides.
	for i := 0; i < 8; i++ {
		g.set(i, 7, false, RegionSeparator)
		g.set(size-8+i, 7, false, RegionSeparator)
		g.set(i, size-8, false, RegionSeparator)
	}
	for i := 0; i < 7; i++ {
		g.set(7, i, false, RegionSeparator)
		g.set(size-8, i, false, RegionSeparator)
		g.set(7, size-7+i, false, RegionSeparator)
	}

	g.set(8, size-8, true, RegionDarkModule)

	if v.number >= 2 {
		for _, cy := range v.alignment {
			for _, cx := range v.alignment {
				// Centres that land on a finder are skipped.
				if !g.isEmpty(cx, cy) {
					continue
				}
				for dy := 0; dy < 5; dy++ {
					for dx := 0; dx < 5; dx++ {
						dark := alignmentPattern[dy]&(1<<uint(4-dx)) != 0
						g.set(cx-2+dx, cy-2+dy, dark, RegionAlignment)
					}
				}
			}
		}
	}

	for i := 8; i < size-8; i++ {
		dark := i%2 == 0
		if g.isEmpty(i, 6) {
			g.set(i, 6, dark, RegionTiming)
		}
		if g.isEmpty(6, i) {
			g.set(6, i, dark, RegionTiming)
		}
	}

	for i := 0; i < 15; i++ {
		x1, y1, x2, y2 := formatPositions(i, size)
		g.set(x1, y1, false, RegionFormat)
		g.set(x2, y2, false, RegionFormat)
	}

	if v.number >= 7 {
		info := versionInfoBits(v.number)
		for i := 0; i < 18; i++ {
			dark := info>>uint(i)&1 == 1
			a, b := i/3, size-11+i%3
			g.set(a, b, dark, RegionVersion)
			g.set(b, a, dark, RegionVersion)
		}
	}
	return g
}

// formatLeft lists where format bit i (LSB first) sits around the top-left
// finder; the second copy is split between the other two finders.
var formatLeft = [15][2]int{
	{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
	{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
}

func formatPositions(i, size int) (x1, y1, x2, y2 int) {
	x1, y1 = formatLeft[i][0], formatLeft[i][1]
	if i < 8 {
		return x1, y1, size - 1 - i, 8
	}
	return x1, y1, 8, size - 7 + (i - 8)
}

const (
	formatPoly    = 0x537
	formatXorMask = 0x5412
	versionPoly   = 0x1f25
)

// bchRemainder appends the BCH remainder of value under poly.
func bchRemainder(value, poly int) int {
	degree := bitLength(poly) - 1
	value <<= uint(degree)
	for bitLength(value) > degree {
		value ^= poly << uint(bitLength(value)-bitLength(poly))
	}
	return value
}

func bitLength(v int) int {
	n := 0
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

// formatInfoBits is the masked 15-bit format word for level and mask.
func formatInfoBits(level Level, mask int) int {
	data := level.formatBits()<<3 | mask
	return (data<<10 | bchRemainder(data, formatPoly)) ^ formatXorMask
}

// versionInfoBits is the 18-bit version word for versions 7 and up.
func versionInfoBits(version int) int {
	return version<<12 | bchRemainder(version, versionPoly)
}

func writeFormatInfo(g *grid, level Level, mask int) {
	info := formatInfoBits(level, mask)
	for i := 0; i < 15; i++ {
		dark := info>>uint(i)&1 == 1
		x1, y1, x2, y2 := formatPositions(i, g.size)
		g.set(x1, y1, dark, RegionFormat)
		g.set(x2, y2, dark, RegionFormat)
	}
}

// walkData visits every empty module in the standard two-column zig-zag,
// starting bottom-right and moving upward, skipping the vertical timing
// column. fn receives the visit index.
func walkData(g *grid, fn func(x, y, idx int)) {
	size := g.size
	idx := 0
	upward := true
	for right := size - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for step := 0; step < size; step++ {
			y := step
			if upward {
				y = size - 1 - step
			}
			for col := 0; col < 2; col++ {
				x := right - col
				if !g.isEmpty(x, y) {
					continue
				}
				fn(x, y, idx)
				idx++
			}
		}
		upward = !upward
	}
}

// placeData fills the data modules with the stream bits, then applies the
// mask. Bits beyond the stream are light before masking.
func placeData(g *grid, bits *binary.Binary, mask int) {
	walkData(g, func(x, y, idx int) {
		dark := idx < bits.Len() && bits.At(idx)
		if maskBit(mask, x, y) {
			dark = !dark
		}
		g.set(x, y, dark, RegionData)
	})
}

// codewordIndex maps each module of the template to the stream codeword it
// carries, or -1 for function modules and remainder bits.
func codewordIndex(template *grid) []int32 {
	total := len(template.cells)
	out := make([]int32, total)
	for i := range out {
		out[i] = -1
	}
	walkData(template, func(x, y, idx int) {
		out[y*template.size+x] = int32(idx / 8)
	})
	return out
}
