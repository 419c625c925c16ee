// Package encoder turns text into a QR symbol: mode and version selection,
// Reed-Solomon error correction, module placement and mask selection.
//
// Encode is pure and deterministic. The same payload and level always
// produce an identical Matrix, so renderers and scanners agree on every
// module.
package encoder

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/yeqown/reedsolomon"
	"github.com/yeqown/reedsolomon/binary"
)

// MaxPayloadBytes is the byte-mode capacity of a version 40 symbol at
// level Low.
const MaxPayloadBytes = 2953

// Encode builds the smallest symbol that holds payload at level.
// The empty payload yields a version 1 symbol.
func Encode(payload string, level Level) (*Matrix, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	if !utf8.ValidString(payload) {
		return nil, ErrUnsupportedCharacter
	}
	// No mode packs more than 7089 characters into any symbol.
	if len(payload) > 7089 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	mode := chooseMode(payload)
	data := binary.New()
	appendPayload(data, payload, mode)

	v, err := chooseVersion(mode, data.Len(), level)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes in %s mode at level %s", err, len(payload), mode, level)
	}

	blocks := v.blocks(level)
	codewords := dataCodewords(payload, mode, data, v, level)
	stream, owners := interleave(codewords, blocks)

	template := layoutFunctionPatterns(v)
	best, bestMask := chooseMask(template, stream, level)

	return &Matrix{
		size:        v.size(),
		version:     v.number,
		level:       level,
		mode:        mode,
		mask:        bestMask,
		modules:     best.modules(),
		regions:     best.regions,
		codewords:   codewordIndex(template),
		owners:      owners,
		blocks:      blocks.numBlocks(),
		correctable: (blocks.ecPerBlock - misdecodeReserve(v.number, level)) / 2,
	}, nil
}

func chooseVersion(mode Mode, dataBits int, level Level) (*versionSpec, error) {
	for n := minVersion; n <= maxVersion; n++ {
		v := versionFor(n)
		need := 4 + mode.countBits(n) + dataBits
		if need <= v.dataCapacityBits(level) {
			return v, nil
		}
	}
	return nil, ErrPayloadTooLarge
}

// dataCodewords assembles mode indicator, count, data, terminator and
// padding into exactly the version's data codeword count.
func dataCodewords(payload string, mode Mode, data *binary.Binary, v *versionSpec, level Level) []byte {
	bits := binary.New()
	bits.AppendUint32(uint32(mode), 4)
	bits.AppendUint32(uint32(len(payload)), mode.countBits(v.number))
	bits.Append(data)

	capacity := v.dataCapacityBits(level)
	bits.AppendNumBools(min(4, capacity-bits.Len()), false)
	if rem := bits.Len() % 8; rem != 0 {
		bits.AppendNumBools(8-rem, false)
	}
	for pad := 0; bits.Len() < capacity; pad++ {
		if pad%2 == 0 {
			bits.AppendBytes(0xEC)
		} else {
			bits.AppendBytes(0x11)
		}
	}
	out := make([]byte, capacity/8)
	copy(out, bits.Bytes())
	return out
}

// errorCorrection returns the numEC Reed-Solomon codewords of block.
func errorCorrection(block []byte, numEC int) []byte {
	bin := binary.New()
	bin.AppendBytes(block...)
	full := reedsolomon.Encode(bin, numEC).Bytes()
	ec := make([]byte, numEC)
	copy(ec, full[len(block):])
	return ec
}

// interleave splits the data codewords into blocks, appends each block's
// error-correction codewords, and interleaves data then EC column-wise.
// owners[i] is the block that the i-th codeword of the stream belongs to.
func interleave(codewords []byte, spec blockSpec) (*binary.Binary, []uint8) {
	sizes := spec.dataPerBlock()
	dataBlocks := make([][]byte, len(sizes))
	ecBlocks := make([][]byte, len(sizes))
	offset, maxData := 0, 0
	for i, n := range sizes {
		dataBlocks[i] = codewords[offset : offset+n]
		ecBlocks[i] = errorCorrection(dataBlocks[i], spec.ecPerBlock)
		offset += n
		maxData = max(maxData, n)
	}

	out := binary.New()
	owners := make([]uint8, 0, spec.totalCodewords())
	for i := 0; i < maxData; i++ {
		for b, block := range dataBlocks {
			if i < len(block) {
				out.AppendBytes(block[i])
				owners = append(owners, uint8(b))
			}
		}
	}
	for i := 0; i < spec.ecPerBlock; i++ {
		for b, block := range ecBlocks {
			out.AppendBytes(block[i])
			owners = append(owners, uint8(b))
		}
	}
	return out, owners
}

// misdecodeReserve is the number of error-correction codewords small
// symbols set aside for misdecode protection rather than correction.
func misdecodeReserve(version int, level Level) int {
	switch version {
	case 1:
		return [4]int{Low: 3, Medium: 2, Quartile: 1, High: 1}[level]
	case 2:
		if level == Low {
			return 2
		}
	case 3:
		if level == Low {
			return 1
		}
	}
	return 0
}

// chooseMask lays the stream under each of the eight masks and keeps the
// lowest-penalty result, preferring the lower index on ties.
func chooseMask(template *grid, stream *binary.Binary, level Level) (*grid, int) {
	var best *grid
	bestMask, bestScore := 0, math.MaxInt
	for mask := 0; mask < numMasks; mask++ {
		g := buildWithMask(template, stream, level, mask)
		score := penalty(g.modules(), g.size)
		if score < bestScore {
			best, bestMask, bestScore = g, mask, score
		}
	}
	return best, bestMask
}

func buildWithMask(template *grid, stream *binary.Binary, level Level, mask int) *grid {
	g := template.clone()
	writeFormatInfo(g, level, mask)
	placeData(g, stream, mask)
	return g
}

// maskPenalties scores all eight candidate masks for payload at level.
func maskPenalties(payload string, level Level) ([numMasks]int, error) {
	var scores [numMasks]int
	mode := chooseMode(payload)
	data := binary.New()
	appendPayload(data, payload, mode)
	v, err := chooseVersion(mode, data.Len(), level)
	if err != nil {
		return scores, err
	}
	stream, _ := interleave(dataCodewords(payload, mode, data, v, level), v.blocks(level))
	template := layoutFunctionPatterns(v)
	for mask := 0; mask < numMasks; mask++ {
		g := buildWithMask(template, stream, level, mask)
		scores[mask] = penalty(g.modules(), g.size)
	}
	return scores, nil
}
