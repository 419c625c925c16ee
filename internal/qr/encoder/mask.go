package encoder

const numMasks = 8

// maskBit reports whether mask pattern inverts the data module at column
// x, row y.
func maskBit(mask, x, y int) bool {
	switch mask {
	case 0:
		return (y+x)%2 == 0
	case 1:
		return y%2 == 0
	case 2:
		return x%3 == 0
	case 3:
		return (y+x)%3 == 0
	case 4:
		return (y/2+x/3)%2 == 0
	case 5:
		p := y * x
		return p%2+p%3 == 0
	case 6:
		p := y * x
		return (p%2+p%3)%2 == 0
	case 7:
		return ((y*x)%3+(y+x)%2)%2 == 0
	}
	return false
}

// Penalty weights from the four scoring rules.
const (
	penaltyRun     = 3
	penaltyBlock   = 3
	penaltyFinder  = 40
	penaltyBalance = 10
)

func penalty(m []Module, size int) int {
	return penaltyRuns(m, size) + penaltyBlocks(m, size) + penaltyFinderLike(m, size) + penaltyDarkBalance(m, size)
}

// penaltyRuns scores rows and columns with five or more same-coloured
// modules in a row: 3 points for a run of five plus one per extra module.
func penaltyRuns(m []Module, size int) int {
	score := 0
	for _, horizontal := range []bool{true, false} {
		for i := 0; i < size; i++ {
			run := 0
			var prev Module
			for j := 0; j < size; j++ {
				cur := m[i*size+j]
				if !horizontal {
					cur = m[j*size+i]
				}
				if j > 0 && cur == prev {
					run++
					continue
				}
				if run >= 5 {
					score += penaltyRun + run - 5
				}
				run = 1
				prev = cur
			}
			if run >= 5 {
				score += penaltyRun + run - 5
			}
		}
	}
	return score
}

// penaltyBlocks scores every 2x2 block of one colour.
func penaltyBlocks(m []Module, size int) int {
	score := 0
	for y := 0; y < size-1; y++ {
		for x := 0; x < size-1; x++ {
			v := m[y*size+x]
			if v == m[y*size+x+1] && v == m[(y+1)*size+x] && v == m[(y+1)*size+x+1] {
				score += penaltyBlock
			}
		}
	}
	return score
}

// penaltyFinderLike scores 1:1:3:1:1 dark-light patterns that have four
// light modules on either side. Modules beyond the edge count as light.
func penaltyFinderLike(m []Module, size int) int {
	at := func(x, y int) Module {
		if x < 0 || y < 0 || x >= size || y >= size {
			return Light
		}
		return m[y*size+x]
	}
	lightRun := func(x, y, dx, dy int) bool {
		for k := 0; k < 4; k++ {
			if at(x+k*dx, y+k*dy) == Dark {
				return false
			}
		}
		return true
	}
	pattern := [7]Module{Dark, Light, Dark, Dark, Dark, Light, Dark}
	matches := func(x, y, dx, dy int) bool {
		for k, want := range pattern {
			if at(x+k*dx, y+k*dy) != want {
				return false
			}
		}
		return true
	}

	score := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x+6 < size && matches(x, y, 1, 0) &&
				(lightRun(x-4, y, 1, 0) || lightRun(x+7, y, 1, 0)) {
				score += penaltyFinder
			}
			if y+6 < size && matches(x, y, 0, 1) &&
				(lightRun(x, y-4, 0, 1) || lightRun(x, y+7, 0, 1)) {
				score += penaltyFinder
			}
		}
	}
	return score
}

// penaltyDarkBalance scores 10 points per full 5% the dark ratio strays
// from one half.
func penaltyDarkBalance(m []Module, size int) int {
	dark := 0
	for _, v := range m {
		if v == Dark {
			dark++
		}
	}
	total := size * size
	diff := dark*2 - total
	if diff < 0 {
		diff = -diff
	}
	return diff * 10 / total * penaltyBalance
}
