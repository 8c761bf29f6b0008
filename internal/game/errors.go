package game

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrInvalidGameAction   = errors.New("invalid game action")
	ErrInvalidMove         = errors.New("invalid move")
	ErrMalformedCoordinate = errors.New("malformed coordinate")

	// ErrDuplicateShot matches ErrInvalidMove under errors.Is.
	ErrDuplicateShot = fmt.Errorf("%w: coordinate already shot", ErrInvalidMove)

	ErrBoardExhausted  = errors.New("no unshot cell left on board")
	ErrPlacementFailed = errors.New("failed to place fleet")
)
