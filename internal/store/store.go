// Package store keeps game state between moves. Implementations serialize
// mutations per game id, which the game engine itself does not do.
package store

import (
	"context"

	"github.com/krishanu7/battleship-engine/internal/game"
)

// Store defines the persistence interface for games.
type Store interface {
	// Get returns a copy of the game, or game.ErrGameNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Save creates or replaces the game.
	Save(ctx context.Context, g *game.Game) error

	// Update loads the game, runs fn on a private copy and stores the
	// result. Updates to the same id never interleave. When fn returns an
	// error nothing is written and that error is returned as is.
	Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error)

	Delete(ctx context.Context, id string) error
}
