package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/krishanu7/battleship-engine/internal/game"
)

// maxTxRetries bounds optimistic retries when another writer touches the
// same game between WATCH and EXEC.
const maxTxRetries = 10

var errConflict = errors.New("concurrent update conflict")

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisStore stores each game as JSON under "game:<id>" with the given
// expiry (0 keeps keys forever).
func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		rdb: rdb,
		ttl: ttl,
		log: logger.With().Str("component", "store").Logger(),
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (s *redisStore) Get(ctx context.Context, id string) (*game.Game, error) {
	return s.get(ctx, s.rdb, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *redisStore) get(ctx context.Context, c getter, id string) (*game.Game, error) {
	gameJSON, err := c.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}
	var g game.Game
	if err := json.Unmarshal(gameJSON, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	return &g, nil
}

func (s *redisStore) Save(ctx context.Context, g *game.Game) error {
	gameJSON, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", g.ID, err)
	}
	if err := s.rdb.Set(ctx, gameKey(g.ID), gameJSON, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store game %s: %w", g.ID, err)
	}
	return nil
}

func (s *redisStore) Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error) {
	key := gameKey(id)
	var updated *game.Game

	txf := func(tx *redis.Tx) error {
		g, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		gameJSON, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal game %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = g
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug().Str("gameId", id).Int("attempt", attempt+1).Msg("game changed during update, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update game %s: %w", id, errConflict)
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, gameKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	return nil
}
