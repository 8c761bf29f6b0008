package game

import (
	"math/rand"
	"sort"
)

// maxHuntAttempts caps random sampling in hunt mode before the
// row-major scan takes over.
const maxHuntAttempts = 5000

// NextTarget picks the next cell to fire at on the opponent's board. It
// keeps no state between calls: everything it knows is read back from the
// board's shots and ship hits. The returned coordinate has never been shot.
//
// Target mode (some ship is hit but not sunk) extends a line of hits, then
// tries the neighbours of each hit. Hunt mode looks for a gap exactly the
// size of the smallest surviving ship, then samples random cells that could
// still hold it.
func NextTarget(b *Board, rng *rand.Rand) (Coordinate, error) {
	shots := b.shotGrid()

	if hits := openHits(b); len(hits) > 0 {
		if len(hits) >= 2 {
			if c, ok := lineTarget(hits, shots); ok {
				return c, nil
			}
		}
		if c, ok := neighborTarget(hits, shots, rng); ok {
			return c, nil
		}
	}

	size := smallestAliveShip(b)
	if c, ok := gapTarget(shots, size); ok {
		return c, nil
	}
	return huntTarget(shots, size, rng)
}

// openHits returns the hits on ships that are still afloat, sorted by row
// then column.
func openHits(b *Board) []Coordinate {
	var hits []Coordinate
	for i := range b.Ships {
		if b.Ships[i].Sunk() {
			continue
		}
		hits = append(hits, b.Ships[i].Hits...)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Row != hits[j].Row {
			return hits[i].Row < hits[j].Row
		}
		return hits[i].Col < hits[j].Col
	})
	return hits
}

func lineTarget(hits []Coordinate, shots *shotGrid) (Coordinate, bool) {
	first, second := hits[0], hits[1]

	if first.Row == second.Row {
		row := first.Row
		minCol, maxCol := BoardSize, -1
		for _, h := range hits {
			if h.Row != row {
				continue
			}
			minCol = min(minCol, h.Col)
			maxCol = max(maxCol, h.Col)
		}
		return firstFree(shots,
			Coordinate{Row: row, Col: minCol - 1},
			Coordinate{Row: row, Col: maxCol + 1},
		)
	}

	if first.Col == second.Col {
		col := first.Col
		minRow, maxRow := BoardSize, -1
		for _, h := range hits {
			if h.Col != col {
				continue
			}
			minRow = min(minRow, h.Row)
			maxRow = max(maxRow, h.Row)
		}
		return firstFree(shots,
			Coordinate{Row: minRow - 1, Col: col},
			Coordinate{Row: maxRow + 1, Col: col},
		)
	}
	return Coordinate{}, false
}

func neighborTarget(hits []Coordinate, shots *shotGrid, rng *rand.Rand) (Coordinate, bool) {
	for _, h := range hits {
		neighbors := []Coordinate{
			{Row: h.Row - 1, Col: h.Col},
			{Row: h.Row + 1, Col: h.Col},
			{Row: h.Row, Col: h.Col - 1},
			{Row: h.Row, Col: h.Col + 1},
		}
		rng.Shuffle(len(neighbors), func(i, j int) {
			neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
		})
		if c, ok := firstFree(shots, neighbors...); ok {
			return c, true
		}
	}
	return Coordinate{}, false
}

func firstFree(shots *shotGrid, candidates ...Coordinate) (Coordinate, bool) {
	for _, c := range candidates {
		if c.Valid() && !shots.shot(c) {
			return c, true
		}
	}
	return Coordinate{}, false
}

// smallestAliveShip defaults to 2 when no ship is afloat.
func smallestAliveShip(b *Board) int {
	size := 0
	for i := range b.Ships {
		s := &b.Ships[i]
		if s.Sunk() {
			continue
		}
		if size == 0 || s.Size < size {
			size = s.Size
		}
	}
	if size == 0 {
		return 2
	}
	return size
}

// gapTarget scans rows, then columns, for a run of exactly size unshot
// cells walled in by shots or the board edge, and returns its centre.
func gapTarget(shots *shotGrid, size int) (Coordinate, bool) {
	for _, vertical := range []bool{false, true} {
		for line := 0; line < BoardSize; line++ {
			run := 0
			for i := 0; i <= BoardSize; i++ {
				if i < BoardSize && !shots.shot(cellOn(line, i, vertical)) {
					run++
					continue
				}
				if run == size {
					centre := cellOn(line, i-run+run/2, vertical)
					if fitsGap(shots, centre, size) {
						return centre, true
					}
				}
				run = 0
			}
		}
	}
	return Coordinate{}, false
}

func cellOn(line, i int, vertical bool) Coordinate {
	if vertical {
		return Coordinate{Row: i, Col: line}
	}
	return Coordinate{Row: line, Col: i}
}

func huntTarget(shots *shotGrid, size int, rng *rand.Rand) (Coordinate, error) {
	for attempt := 0; attempt < maxHuntAttempts; attempt++ {
		c := Coordinate{Row: rng.Intn(BoardSize), Col: rng.Intn(BoardSize)}
		if !shots.shot(c) && fitsGap(shots, c, size) {
			return c, nil
		}
	}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			c := Coordinate{Row: row, Col: col}
			if !shots.shot(c) {
				return c, nil
			}
		}
	}
	return Coordinate{}, ErrBoardExhausted
}

// fitsGap reports whether a ship of the given size could cross c
// horizontally or vertically without covering a shot cell.
func fitsGap(shots *shotGrid, c Coordinate, size int) bool {
	if freeRun(shots, c, 0, -1)+1+freeRun(shots, c, 0, 1) >= size {
		return true
	}
	return freeRun(shots, c, -1, 0)+1+freeRun(shots, c, 1, 0) >= size
}

func freeRun(shots *shotGrid, from Coordinate, dr, dc int) int {
	n := 0
	c := Coordinate{Row: from.Row + dr, Col: from.Col + dc}
	for c.Valid() && !shots.shot(c) {
		n++
		c = Coordinate{Row: c.Row + dr, Col: c.Col + dc}
	}
	return n
}
