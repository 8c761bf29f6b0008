package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/krishanu7/battleship-engine/internal/game"
)

func TestNewMove(t *testing.T) {
	g := &game.Game{ID: "g1", Status: game.StatusPlaying, Turn: game.SideCPU}
	shot := game.ShotResult{Coordinate: game.Coordinate{Row: 1, Col: 2}}
	m := NewMove(g, game.SidePlayer, shot)
	if m.Coordinate != "B3" || m.Result != "miss" || m.NextTurn != game.SideCPU || m.Player != game.SidePlayer {
		t.Fatalf("unexpected move: %+v", m)
	}

	shot.Hit, shot.Sunk, shot.Ship = true, true, game.Destroyer
	m = NewMove(g, game.SidePlayer, shot)
	if m.Result != "hit" || m.Sunk != game.Destroyer {
		t.Fatalf("unexpected move: %+v", m)
	}
}

func TestPublishAndReceive(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Move, 1)
	ready := make(chan struct{})
	done := make(chan error, 1)
	w := NewWorker(rdb, "game-progress", zerolog.Nop())
	go func() {
		done <- w.Run(ctx, ready, func(m Move) { received <- m })
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not subscribe")
	}

	want := Move{Type: "move", GameID: "g1", Player: game.SideCPU, Coordinate: "J10", Result: "hit", Status: game.StatusPlaying, NextTurn: game.SideCPU}
	if err := NewRedisPublisher(rdb, "game-progress").Publish(ctx, want); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Fatalf("received %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("move not received")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
