package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/krishanu7/battleship-engine/internal/game"
)

type memory struct {
	mu    sync.RWMutex // guards games and locks
	games map[string]*game.Game
	locks map[string]*sync.Mutex
}

// NewMemoryStore returns a process-local Store. State is lost on restart.
func NewMemoryStore() Store {
	return &memory{
		games: make(map[string]*game.Game),
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, id)
	}
	return g.Clone(), nil
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	if err := m.Save(ctx, g); err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	delete(m.locks, id)
	return nil
}

func (m *memory) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}
