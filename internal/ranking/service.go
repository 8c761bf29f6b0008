package ranking

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/krishanu7/battleship-engine/internal/game"
)

type Entry struct {
	Player string `json:"player"`
	Wins   int64  `json:"wins"`
	Played int64  `json:"played"`
}

// Recorder aggregates finished games per player name. Only players with at
// least one win are listed, most wins first.
type Recorder interface {
	RecordResult(ctx context.Context, player string, winner game.Side) error
	Top(ctx context.Context, limit int) ([]Entry, error)
}

type Service struct {
	rdb       *redis.Client
	winsKey   string
	playedKey string
}

// NewService keeps wins in the sorted set "<prefix>:wins" and games played
// in the hash "<prefix>:played".
func NewService(rdb *redis.Client, prefix string) *Service {
	return &Service{
		rdb:       rdb,
		winsKey:   prefix + ":wins",
		playedKey: prefix + ":played",
	}
}

func (s *Service) RecordResult(ctx context.Context, player string, winner game.Side) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.playedKey, player, 1)
		if winner == game.SidePlayer {
			pipe.ZIncrBy(ctx, s.winsKey, 1, player)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record result for %s: %w", player, err)
	}
	return nil
}

func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.rdb.ZRevRangeWithScores(ctx, s.winsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	players := make([]string, len(rows))
	for i, row := range rows {
		players[i], _ = row.Member.(string)
	}
	played, err := s.rdb.HMGet(ctx, s.playedKey, players...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read games played: %w", err)
	}

	leaderboard := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entry := Entry{Player: players[i], Wins: int64(row.Score)}
		if v, ok := played[i].(string); ok {
			entry.Played, _ = strconv.ParseInt(v, 10, 64)
		}
		leaderboard = append(leaderboard, entry)
	}
	return leaderboard, nil
}

type memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewMemory() Recorder {
	return &memory{entries: make(map[string]*Entry)}
}

func (m *memory) RecordResult(ctx context.Context, player string, winner game.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[player]
	if !ok {
		e = &Entry{Player: player}
		m.entries[player] = e
	}
	e.Played++
	if winner == game.SidePlayer {
		e.Wins++
	}
	return nil
}

func (m *memory) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.Wins > 0 {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Player > out[j].Player
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
