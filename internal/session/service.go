// Package session exposes the game operations to callers. It loads and
// stores games, serializes moves per game, and reports results to the
// ranking and event collaborators.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/krishanu7/battleship-engine/internal/events"
	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/ranking"
	"github.com/krishanu7/battleship-engine/internal/store"
)

type Service struct {
	store   store.Store
	ranking ranking.Recorder
	events  events.Publisher
	log     zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	newID func() string
	now   func() time.Time
}

type Option func(*Service)

// WithRand replaces the time-seeded random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(st store.Store, rec ranking.Recorder, pub events.Publisher, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   st,
		ranking: rec,
		events:  pub,
		log:     logger.With().Str("component", "session").Logger(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	return s
}

// withRand runs fn while holding the random source; *rand.Rand is not safe
// for concurrent use.
func (s *Service) withRand(fn func(*rand.Rand) error) error {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return fn(s.rng)
}

// CreateGame starts a game in SETUP with the CPU fleet already placed.
func (s *Service) CreateGame(ctx context.Context, playerName string) (*game.Game, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", game.ErrInvalidGameAction)
	}

	var g *game.Game
	err := s.withRand(func(rng *rand.Rand) error {
		var err error
		g, err = game.NewGame(s.newID(), rng)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.PlayerName = playerName
	g.StartedAt = s.now().Unix()

	if err := s.store.Save(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info().Str("gameId", g.ID).Str("player", playerName).Msg("game created")
	return g, nil
}

func (s *Service) Get(ctx context.Context, gameID string) (*game.Game, error) {
	return s.store.Get(ctx, gameID)
}

// SubmitFleet places the player's ships and moves the game to PLAYING.
func (s *Service) SubmitFleet(ctx context.Context, gameID string, ships []game.Ship) (*game.Game, error) {
	g, err := s.store.Update(ctx, gameID, func(g *game.Game) error {
		return g.SubmitFleet(ships)
	})
	if err != nil {
		s.log.Debug().Err(err).Str("gameId", gameID).Msg("fleet rejected")
		return nil, err
	}
	s.log.Info().Str("gameId", gameID).Msg("battle started")
	return g, nil
}

// PlayerMove fires at the CPU board. coordinate must look like "A1".."J10".
func (s *Service) PlayerMove(ctx context.Context, gameID, coordinate string) (*game.Game, error) {
	target, err := game.ParseCoordinate(coordinate)
	if err != nil {
		return nil, err
	}
	var shot game.ShotResult
	g, err := s.store.Update(ctx, gameID, func(g *game.Game) error {
		var err error
		shot, err = g.PlayerMove(target)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterShot(ctx, g, game.SidePlayer, shot)
	return g, nil
}

// CPUMove lets the computer take one shot at the player board.
func (s *Service) CPUMove(ctx context.Context, gameID string) (*game.Game, error) {
	var shot game.ShotResult
	g, err := s.store.Update(ctx, gameID, func(g *game.Game) error {
		return s.withRand(func(rng *rand.Rand) error {
			var err error
			shot, err = g.CPUMove(rng)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.afterShot(ctx, g, game.SideCPU, shot)
	return g, nil
}

func (s *Service) Ranking(ctx context.Context, limit int) ([]ranking.Entry, error) {
	return s.ranking.Top(ctx, limit)
}

// afterShot runs once the shot is stored. Failures here are logged and do
// not undo the move.
func (s *Service) afterShot(ctx context.Context, g *game.Game, shooter game.Side, shot game.ShotResult) {
	logger := s.log.With().Str("gameId", g.ID).Str("shooter", string(shooter)).Logger()
	logger.Debug().
		Str("coordinate", shot.Coordinate.String()).
		Bool("hit", shot.Hit).
		Str("next", string(g.Turn)).
		Msg("shot fired")
	if shot.Sunk {
		logger.Info().Str("ship", string(shot.Ship)).Msg("ship sunk")
	}

	if err := s.events.Publish(ctx, events.NewMove(g, shooter, shot)); err != nil {
		logger.Warn().Err(err).Msg("failed to publish move")
	}

	// Only the shot that finished the game reaches here with FINISHED;
	// every later move is rejected by the engine.
	if g.Status != game.StatusFinished {
		return
	}
	logger.Info().Str("winner", string(g.Winner)).Msg("game over")
	if err := s.ranking.RecordResult(ctx, g.PlayerName, g.Winner); err != nil {
		logger.Error().Err(err).Msg("failed to update ranking")
	}
}
