package encoder

import "strings"

// Module is the colour of one cell of the symbol.
type Module uint8

const (
	Light Module = iota
	Dark
)

// Region tells which part of the symbol a module belongs to. Every region
// other than RegionData is reserved: its modules never carry codewords.
type Region uint8

const (
	RegionData Region = iota
	RegionFinder
	RegionSeparator
	RegionTiming
	RegionAlignment
	RegionFormat
	RegionVersion
	RegionDarkModule
)

func (r Region) String() string {
	switch r {
	case RegionData:
		return "data"
	case RegionFinder:
		return "finder"
	case RegionSeparator:
		return "separator"
	case RegionTiming:
		return "timing"
	case RegionAlignment:
		return "alignment"
	case RegionFormat:
		return "format"
	case RegionVersion:
		return "version"
	case RegionDarkModule:
		return "dark-module"
	}
	return "unknown"
}

// Matrix is a finished QR symbol. It is immutable once returned by Encode.
type Matrix struct {
	size    int
	version int
	level   Level
	mode    Mode
	mask    int
	modules []Module
	regions []Region

	// codewords maps each module to its stream codeword, -1 when none;
	// owners maps each stream codeword to its Reed-Solomon block.
	codewords   []int32
	owners      []uint8
	blocks      int
	correctable int
}

// Size is the side length in modules, 4*version+17.
func (m *Matrix) Size() int { return m.size }

func (m *Matrix) Version() int { return m.version }

func (m *Matrix) Level() Level { return m.level }

func (m *Matrix) Mode() Mode { return m.mode }

// Mask is the index of the data mask pattern applied, 0 through 7.
func (m *Matrix) Mask() int { return m.mask }

// At returns the module at column x, row y.
func (m *Matrix) At(x, y int) Module { return m.modules[y*m.size+x] }

// IsDark reports whether the module at (x, y) is dark. Coordinates outside
// the symbol are light.
func (m *Matrix) IsDark(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.modules[y*m.size+x] == Dark
}

// Region returns the region the module at (x, y) belongs to.
func (m *Matrix) Region(x, y int) Region { return m.regions[y*m.size+x] }

// Reserved reports whether (x, y) is a function module rather than data.
func (m *Matrix) Reserved(x, y int) bool { return m.Region(x, y) != RegionData }

// Blocks is the number of Reed-Solomon blocks in the symbol.
func (m *Matrix) Blocks() int { return m.blocks }

// Correctable is the number of codeword errors each block can repair.
func (m *Matrix) Correctable() int { return m.correctable }

// Damage counts, per Reed-Solomon block, the distinct codewords that have
// at least one module for which hit reports true.
func (m *Matrix) Damage(hit func(x, y int) bool) []int {
	damage := make([]int, m.blocks)
	seen := make(map[int32]struct{})
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			c := m.codewords[y*m.size+x]
			if c < 0 || int(c) >= len(m.owners) {
				continue
			}
			if _, ok := seen[c]; ok || !hit(x, y) {
				continue
			}
			seen[c] = struct{}{}
			damage[m.owners[c]]++
		}
	}
	return damage
}

// Equal reports whether both matrices carry identical modules and metadata.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.size != o.size || m.version != o.version || m.level != o.level || m.mode != o.mode || m.mask != o.mask {
		return false
	}
	for i := range m.modules {
		if m.modules[i] != o.modules[i] || m.regions[i] != o.regions[i] {
			return false
		}
	}
	return true
}

// Penalty scores the finished symbol with the four mask penalty rules.
func (m *Matrix) Penalty() int {
	return penalty(m.modules, m.size)
}

// String renders the symbol as text, two characters per module.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.Grow((m.size*2 + 1) * m.size)
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			if m.IsDark(x, y) {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
