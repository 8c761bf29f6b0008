package game

import (
	"fmt"
	"math/rand"
	"sort"
)

// NewGame creates a game in SETUP with an empty player board and a
// randomly placed CPU fleet. The player fires first.
func NewGame(id string, rng *rand.Rand) (*Game, error) {
	g := &Game{
		ID:     id,
		Status: StatusSetup,
		Turn:   SidePlayer,
	}
	if err := PlaceFleet(&g.CPUBoard, rng); err != nil {
		return nil, err
	}
	return g, nil
}

// SubmitFleet installs the player's fleet and starts the battle. The game
// is left untouched when the fleet is rejected.
func (g *Game) SubmitFleet(ships []Ship) error {
	if g.Status != StatusSetup {
		return fmt.Errorf("%w: game is %s, not in SETUP", ErrInvalidGameAction, g.Status)
	}
	fleet, err := ValidateFleet(ships)
	if err != nil {
		return err
	}
	g.PlayerBoard = Board{Ships: fleet}
	g.Status = StatusPlaying
	return nil
}

// ValidateFleet checks a submitted fleet and returns a normalized copy with
// hits cleared. Ships without a type are named after their size.
func ValidateFleet(ships []Ship) ([]Ship, error) {
	if len(ships) != len(Fleet) {
		return nil, fmt.Errorf("%w: expected %d ships, got %d", ErrInvalidGameAction, len(Fleet), len(ships))
	}

	var occupied [BoardSize][BoardSize]bool
	sizes := make([]int, 0, len(ships))
	fleet := make([]Ship, 0, len(ships))
	for i, ship := range ships {
		if len(ship.Cells) == 0 {
			return nil, fmt.Errorf("%w: ship %d has no cells", ErrInvalidGameAction, i+1)
		}
		size := ship.Size
		if size == 0 {
			size = len(ship.Cells)
		}
		if size != len(ship.Cells) {
			return nil, fmt.Errorf("%w: ship %d has size %d but %d cells", ErrInvalidGameAction, i+1, size, len(ship.Cells))
		}
		if !straightLine(ship.Cells) {
			return nil, fmt.Errorf("%w: ship %d is not a straight contiguous line", ErrInvalidGameAction, i+1)
		}
		for _, c := range ship.Cells {
			if occupied[c.Row][c.Col] {
				return nil, fmt.Errorf("%w: overlap at %s", ErrInvalidGameAction, c)
			}
			occupied[c.Row][c.Col] = true
		}
		t := ship.Type
		if t == "" {
			t = ShipType(fmt.Sprintf("Ship-%d", size))
		}
		sizes = append(sizes, size)
		fleet = append(fleet, Ship{Type: t, Size: size, Cells: append([]Coordinate(nil), ship.Cells...)})
	}

	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	for i, spec := range Fleet {
		if sizes[i] != spec.Size {
			return nil, fmt.Errorf("%w: fleet sizes must be 5,4,3,3,2", ErrInvalidGameAction)
		}
	}
	return fleet, nil
}

// straightLine reports whether cells lie in bounds on one row or column,
// each following the previous one.
func straightLine(cells []Coordinate) bool {
	for _, c := range cells {
		if !c.Valid() {
			return false
		}
	}
	if len(cells) == 1 {
		return true
	}
	dr, dc := cells[1].Row-cells[0].Row, cells[1].Col-cells[0].Col
	if !(dr == 0 && (dc == 1 || dc == -1)) && !(dc == 0 && (dr == 1 || dr == -1)) {
		return false
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Row-cells[i-1].Row != dr || cells[i].Col-cells[i-1].Col != dc {
			return false
		}
	}
	return true
}

// PlayerMove fires the player's shot at the CPU board. A hit keeps the
// turn; a miss hands it to the CPU.
func (g *Game) PlayerMove(c Coordinate) (ShotResult, error) {
	if err := g.checkTurn(SidePlayer); err != nil {
		return ShotResult{}, err
	}
	result, err := g.CPUBoard.ApplyShot(c)
	if err != nil {
		return ShotResult{}, err
	}
	g.advance(result.Hit, SideCPU)
	return result, nil
}

// CPUMove lets the targeting AI fire at the player board.
func (g *Game) CPUMove(rng *rand.Rand) (ShotResult, error) {
	if err := g.checkTurn(SideCPU); err != nil {
		return ShotResult{}, err
	}
	target, err := NextTarget(&g.PlayerBoard, rng)
	if err != nil {
		return ShotResult{}, err
	}
	result, err := g.PlayerBoard.ApplyShot(target)
	if err != nil {
		return ShotResult{}, err
	}
	g.advance(result.Hit, SidePlayer)
	return result, nil
}

func (g *Game) checkTurn(side Side) error {
	if g.Status != StatusPlaying {
		return fmt.Errorf("%w: game is %s", ErrInvalidGameAction, g.Status)
	}
	if g.Turn != side {
		return fmt.Errorf("%w: it is not %s's turn", ErrInvalidMove, side)
	}
	return nil
}

func (g *Game) advance(hit bool, opponent Side) {
	if g.checkVictory() {
		return
	}
	if !hit {
		g.Turn = opponent
	}
}

// checkVictory finishes the game once either board is defeated.
func (g *Game) checkVictory() bool {
	switch {
	case g.CPUBoard.Defeated():
		g.Winner = SidePlayer
	case g.PlayerBoard.Defeated():
		g.Winner = SideCPU
	default:
		return false
	}
	g.Status = StatusFinished
	return true
}
