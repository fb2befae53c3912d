// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development, tests, and single-process deployments where
// durability is not required.
//
// Characteristics:
//   - Games and invites are kept as private copies keyed by ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Version checks happen under the write lock, so check-then-write is
//     never interleaved with another writer.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
)

// Memory is a map-based Store.
type Memory struct {
	mu      sync.RWMutex              // guards both maps
	games   map[string]*game.Game     // keyed by Game.ID
	invites map[string]*invite.Invite // keyed by Invite.ID
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{
		games:   make(map[string]*game.Game),
		invites: make(map[string]*invite.Invite),
	}
}

func (m *Memory) CreateGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertGameLocked(g)
}

func (m *Memory) insertGameLocked(g *game.Game) error {
	if _, ok := m.games[g.ID]; ok {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	g.Version = 1
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *Memory) GetGame(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != g.Version {
		return ErrConflict
	}
	g.Version++
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *Memory) ListGames(ctx context.Context, playerID string, limit int) ([]*game.Game, error) {
	m.mu.RLock()
	out := []*game.Game{}
	for _, g := range m.games {
		if g.HasPlayer(playerID) {
			out = append(out, g.Clone())
		}
	}
	m.mu.RUnlock()

	sortGamesNewest(out)
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateInvite(ctx context.Context, inv *invite.Invite, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.invites {
		if other.Sender == inv.Sender && other.Receiver == inv.Receiver && other.Open(now) {
			return invite.ErrDuplicatePending
		}
	}
	if _, ok := m.invites[inv.ID]; ok {
		return fmt.Errorf("invite %s already exists", inv.ID)
	}
	inv.Version = 1
	m.invites[inv.ID] = inv.Clone()
	return nil
}

func (m *Memory) GetInvite(ctx context.Context, id string) (*invite.Invite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invites[id]; ok {
		return inv.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateInvite(ctx context.Context, inv *invite.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateInviteLocked(inv)
}

func (m *Memory) updateInviteLocked(inv *invite.Invite) error {
	cur, ok := m.invites[inv.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != inv.Version {
		return ErrConflict
	}
	inv.Version++
	m.invites[inv.ID] = inv.Clone()
	return nil
}

func (m *Memory) AcceptInvite(ctx context.Context, inv *invite.Invite, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.invites[inv.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != inv.Version {
		return ErrConflict
	}
	if err := m.insertGameLocked(g); err != nil {
		return err
	}
	return m.updateInviteLocked(inv)
}

func (m *Memory) ListPendingInvites(ctx context.Context, receiverID string, now time.Time, limit int) ([]*invite.Invite, error) {
	m.mu.RLock()
	out := []*invite.Invite{}
	for _, inv := range m.invites {
		if inv.Receiver == receiverID && inv.Open(now) {
			out = append(out, inv.Clone())
		}
	}
	m.mu.RUnlock()

	sortInvitesNewest(out)
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
