// Package store persists games and invites.
//
// Every implementation provides conditional writes: an update commits only
// if the record's stored Version still equals the Version the caller read,
// and otherwise fails with ErrConflict without touching the record. On
// success the caller's copy has its Version bumped to the committed value.
// Reads always return copies that share nothing with the store.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
)

var (
	// ErrNotFound is returned for unknown game or invite ids.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the record changed since it was read. Re-read and retry.
	ErrConflict = errors.New("conflict: record changed since it was read")
)

// DefaultListLimit caps list queries when the caller passes limit <= 0.
const DefaultListLimit = 50

// Store defines the persistence interface for duels.
type Store interface {
	// CreateGame inserts a new game and sets its Version to 1.
	CreateGame(ctx context.Context, g *game.Game) error
	// GetGame retrieves a game by ID.
	GetGame(ctx context.Context, id string) (*game.Game, error)
	// UpdateGame commits g if the stored version equals g.Version.
	UpdateGame(ctx context.Context, g *game.Game) error
	// ListGames returns games a player takes part in, newest first.
	ListGames(ctx context.Context, playerID string, limit int) ([]*game.Game, error)

	// CreateInvite inserts inv unless an open PENDING invite from the same
	// sender to the same receiver exists at now (invite.ErrDuplicatePending).
	CreateInvite(ctx context.Context, inv *invite.Invite, now time.Time) error
	// GetInvite retrieves an invite by ID.
	GetInvite(ctx context.Context, id string) (*invite.Invite, error)
	// UpdateInvite commits inv if the stored version equals inv.Version.
	UpdateInvite(ctx context.Context, inv *invite.Invite) error
	// AcceptInvite commits inv like UpdateInvite and inserts g in the same
	// atomic step. On conflict neither is written.
	AcceptInvite(ctx context.Context, inv *invite.Invite, g *game.Game) error
	// ListPendingInvites returns invites received by a player that are
	// still open at now (PENDING and unexpired), newest first. Lapsed
	// invites are skipped before the limit is applied.
	ListPendingInvites(ctx context.Context, receiverID string, now time.Time, limit int) ([]*invite.Invite, error)

	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func sortGamesNewest(gs []*game.Game) {
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].CreatedAt.Equal(gs[j].CreatedAt) {
			return gs[i].ID > gs[j].ID
		}
		return gs[i].CreatedAt.After(gs[j].CreatedAt)
	})
}

func sortInvitesNewest(is []*invite.Invite) {
	sort.SliceStable(is, func(i, j int) bool {
		if is[i].CreatedAt.Equal(is[j].CreatedAt) {
			return is[i].ID > is[j].ID
		}
		return is[i].CreatedAt.After(is[j].CreatedAt)
	})
}
