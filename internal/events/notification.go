package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/krishanu7/battleship-engine/internal/game"
)

// Move describes one shot, published after it has been stored.
type Move struct {
	Type       string        `json:"type"`
	GameID     string        `json:"gameId"`
	Player     game.Side     `json:"player"`
	Coordinate string        `json:"coordinate"`
	Result     string        `json:"result"`
	Sunk       game.ShipType `json:"sunk,omitempty"`
	Status     game.Status   `json:"status"`
	NextTurn   game.Side     `json:"nextTurn"`
	Winner     game.Side     `json:"winner,omitempty"`
}

func NewMove(g *game.Game, shooter game.Side, shot game.ShotResult) Move {
	result := "miss"
	if shot.Hit {
		result = "hit"
	}
	return Move{
		Type:       "move",
		GameID:     g.ID,
		Player:     shooter,
		Coordinate: shot.Coordinate.String(),
		Result:     result,
		Sunk:       shot.Ship,
		Status:     g.Status,
		NextTurn:   g.Turn,
		Winner:     g.Winner,
	}
}

type Publisher interface {
	Publish(ctx context.Context, m Move) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Move) error { return nil }

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, m Move) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal move: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish move for game %s: %w", m.GameID, err)
	}
	return nil
}

// Worker forwards moves published on a channel to a handler.
type Worker struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

func NewWorker(rdb *redis.Client, channel string, logger zerolog.Logger) *Worker {
	return &Worker{
		rdb:     rdb,
		channel: channel,
		log:     logger.With().Str("component", "events").Logger(),
	}
}

// Run subscribes and calls handle for every decodable move until ctx is
// done. Undecodable payloads are logged and skipped. ready, if not nil, is
// closed once the subscription is active.
func (w *Worker) Run(ctx context.Context, ready chan<- struct{}, handle func(Move)) error {
	pubsub := w.rdb.Subscribe(ctx, w.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", w.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	w.log.Info().Str("channel", w.channel).Msg("event worker started")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return nil
			}
			w.log.Warn().Err(err).Msg("pub/sub receive failed")
			continue
		}
		var m Move
		if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
			w.log.Warn().Err(err).Str("payload", msg.Payload).Msg("failed to unmarshal move")
			continue
		}
		handle(m)
	}
}
