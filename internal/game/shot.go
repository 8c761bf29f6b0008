package game

import "fmt"

type ShotResult struct {
	Coordinate Coordinate `json:"coordinate"`
	Hit        bool       `json:"hit"`

	// Sunk is set when this shot sank a ship; Ship names it.
	Sunk bool     `json:"sunk,omitempty"`
	Ship ShipType `json:"ship,omitempty"`
}

// ApplyShot records a shot at c. A repeated coordinate is rejected with
// ErrDuplicateShot before anything is changed.
func (b *Board) ApplyShot(c Coordinate) (ShotResult, error) {
	if !c.Valid() {
		return ShotResult{}, fmt.Errorf("%w: row %d col %d", ErrMalformedCoordinate, c.Row, c.Col)
	}
	if b.HasShot(c) {
		return ShotResult{}, fmt.Errorf("%w: %s", ErrDuplicateShot, c)
	}
	b.ShotsReceived = append(b.ShotsReceived, c)

	result := ShotResult{Coordinate: c}
	i := b.shipAt(c)
	if i < 0 {
		return result, nil
	}
	ship := &b.Ships[i]
	if !ship.IsHitAt(c) {
		ship.Hits = append(ship.Hits, c)
	}
	result.Hit = true
	if ship.Sunk() {
		result.Sunk = true
		result.Ship = ship.Type
	}
	return result, nil
}
