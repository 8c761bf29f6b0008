package game

import (
	"fmt"
	"math/rand"
)

const (
	// maxPlacementAttempts caps random tries per ship before the board is
	// scanned for a slot.
	maxPlacementAttempts = 1000
	maxFleetRestarts     = 100
)

type placement int

const (
	placed placement = iota
	collision
	outOfBounds
)

func (p placement) String() string {
	switch p {
	case placed:
		return "placed"
	case collision:
		return "collision"
	default:
		return "out of bounds"
	}
}

// PlaceFleet replaces the ships of b with a randomly laid out fleet and
// clears its shots. Each ship gets a uniformly random origin and
// orientation, retried on collision or when it leaves the grid.
func PlaceFleet(b *Board, rng *rand.Rand) error {
	for restart := 0; restart < maxFleetRestarts; restart++ {
		b.Ships = b.Ships[:0]
		b.ShotsReceived = nil
		if placeAll(b, rng) {
			return nil
		}
	}
	b.Ships = nil
	return fmt.Errorf("%w after %d restarts", ErrPlacementFailed, maxFleetRestarts)
}

// RandomFleet returns a freshly placed fleet, suitable for SubmitFleet.
func RandomFleet(rng *rand.Rand) ([]Ship, error) {
	var b Board
	if err := PlaceFleet(&b, rng); err != nil {
		return nil, err
	}
	return b.Ships, nil
}

func placeAll(b *Board, rng *rand.Rand) bool {
	var occupied [BoardSize][BoardSize]bool
	for _, spec := range Fleet {
		ship, ok := placeRandom(spec, &occupied, rng)
		if !ok {
			ship, ok = placeScan(spec, &occupied)
		}
		if !ok {
			return false
		}
		for _, c := range ship.Cells {
			occupied[c.Row][c.Col] = true
		}
		b.Ships = append(b.Ships, ship)
	}
	return true
}

func placeRandom(spec ShipSpec, occupied *[BoardSize][BoardSize]bool, rng *rand.Rand) (Ship, bool) {
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		o := Horizontal
		if rng.Intn(2) == 0 {
			o = Vertical
		}
		start := Coordinate{Row: rng.Intn(BoardSize), Col: rng.Intn(BoardSize)}
		if ship, outcome := tryPlace(spec, start, o, occupied); outcome == placed {
			return ship, true
		}
	}
	return Ship{}, false
}

// placeScan walks every origin in row-major order, horizontal first.
func placeScan(spec ShipSpec, occupied *[BoardSize][BoardSize]bool) (Ship, bool) {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			for _, o := range []Orientation{Horizontal, Vertical} {
				ship, outcome := tryPlace(spec, Coordinate{Row: row, Col: col}, o, occupied)
				if outcome == placed {
					return ship, true
				}
			}
		}
	}
	return Ship{}, false
}

func tryPlace(spec ShipSpec, start Coordinate, o Orientation, occupied *[BoardSize][BoardSize]bool) (Ship, placement) {
	cells, err := lineFrom(start, o, spec.Size)
	if err != nil {
		return Ship{}, outOfBounds
	}
	for _, c := range cells {
		if occupied[c.Row][c.Col] {
			return Ship{}, collision
		}
	}
	return Ship{Type: spec.Type, Size: spec.Size, Cells: cells}, placed
}
