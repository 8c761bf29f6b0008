package store

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/krishanu7/battleship-engine/internal/game"
)

func newRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, time.Hour, zerolog.Nop()), mr
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  rs,
	}
}

func newGame(t *testing.T, id string) *game.Game {
	t.Helper()
	g, err := game.NewGame(id, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	return g
}

func TestStoreRoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := newGame(t, "g1")
			if err := st.Save(ctx, g); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := st.Get(ctx, "g1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Status != game.StatusSetup || len(got.CPUBoard.Ships) != 5 {
				t.Fatalf("unexpected game: %+v", got)
			}
			if got.CPUBoard.Ships[0].Cells[0] != g.CPUBoard.Ships[0].Cells[0] {
				t.Fatal("ship cells did not survive the round trip")
			}

			if err := st.Delete(ctx, "g1"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := st.Get(ctx, "g1"); !errors.Is(err, game.ErrGameNotFound) {
				t.Fatalf("Get after Delete error = %v, want ErrGameNotFound", err)
			}
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := st.Save(ctx, newGame(t, "g1")); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			updated, err := st.Update(ctx, "g1", func(g *game.Game) error {
				g.PlayerName = "ana"
				return nil
			})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if updated.PlayerName != "ana" {
				t.Fatalf("Update returned %q", updated.PlayerName)
			}

			boom := errors.New("boom")
			_, err = st.Update(ctx, "g1", func(g *game.Game) error {
				g.PlayerName = "lost"
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("Update error = %v, want boom", err)
			}
			got, err := st.Get(ctx, "g1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.PlayerName != "ana" {
				t.Fatalf("failed update was written: %q", got.PlayerName)
			}

			if _, err := st.Update(ctx, "missing", func(*game.Game) error { return nil }); !errors.Is(err, game.ErrGameNotFound) {
				t.Fatalf("Update of missing game error = %v, want ErrGameNotFound", err)
			}
		})
	}
}

func TestStoreUpdatesDoNotInterleave(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := newGame(t, "g1")
			if err := st.Save(ctx, g); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			// Each writer appends one distinct shot; a lost update would
			// drop a shot.
			const writers = 8
			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := st.Update(ctx, "g1", func(g *game.Game) error {
						g.CPUBoard.ShotsReceived = append(g.CPUBoard.ShotsReceived, game.Coordinate{Row: i, Col: i})
						return nil
					})
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				if err != nil {
					t.Fatalf("concurrent Update failed: %v", err)
				}
			}

			got, err := st.Get(ctx, "g1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if len(got.CPUBoard.ShotsReceived) != writers {
				t.Fatalf("got %d shots, want %d", len(got.CPUBoard.ShotsReceived), writers)
			}
		})
	}
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	st, mr := newRedisStore(t)
	if err := st.Save(context.Background(), newGame(t, "g1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL("game:g1"); ttl != time.Hour {
		t.Fatalf("TTL = %v, want 1h", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := st.Get(context.Background(), "g1"); !errors.Is(err, game.ErrGameNotFound) {
		t.Fatalf("expired game error = %v, want ErrGameNotFound", err)
	}
}
