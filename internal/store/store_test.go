package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
)

var baseTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newGame(id, a, b string, created time.Time) *game.Game {
	return &game.Game{
		ID:           id,
		Players:      [2]string{a, b},
		Roles:        game.Roles{Setter: a, Guesser: b},
		Guesses:      []string{},
		Status:       game.StatusWaiting,
		TotalRounds:  game.DefaultRounds,
		CurrentRound: 1,
		History:      []game.RoundRecord{},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func newInvite(t *testing.T, sender, receiver string, created time.Time, ttl time.Duration) *invite.Invite {
	t.Helper()
	inv, err := invite.New(invite.CreateInput{Sender: sender, Receiver: receiver, TTL: ttl}, created)
	require.NoError(t, err)
	return inv
}

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("game round trip", func(t *testing.T) {
		s := open(t)
		g := newGame("g1", "alice", "bob", baseTime)
		g.Roles = game.Roles{Setter: "alice", Guesser: "bob"}
		require.NoError(t, s.CreateGame(ctx, g))
		assert.Equal(t, int64(1), g.Version)

		got, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, g, got)

		_, err = s.GetGame(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reads are copies", func(t *testing.T) {
		s := open(t)
		g := newGame("g1", "alice", "bob", baseTime)
		require.NoError(t, s.CreateGame(ctx, g))
		g.Guesses = append(g.Guesses, "CRANE")

		got, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Empty(t, got.Guesses)
		got.Guesses = append(got.Guesses, "SPEED")

		again, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Empty(t, again.Guesses)
	})

	t.Run("conditional update", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.CreateGame(ctx, newGame("g1", "alice", "bob", baseTime)))

		first, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		second, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)

		first.TargetWord = "CRANE"
		first.Status = game.StatusInProgress
		require.NoError(t, s.UpdateGame(ctx, first))
		assert.Equal(t, int64(2), first.Version)

		second.TargetWord = "SPEED"
		second.Status = game.StatusInProgress
		assert.ErrorIs(t, s.UpdateGame(ctx, second), ErrConflict)
		assert.Equal(t, int64(1), second.Version, "failed write leaves the caller's version alone")

		got, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "CRANE", got.TargetWord)
		assert.Equal(t, int64(2), got.Version)

		ghost := newGame("nope", "alice", "bob", baseTime)
		ghost.Version = 1
		assert.ErrorIs(t, s.UpdateGame(ctx, ghost), ErrNotFound)
	})

	t.Run("list games", func(t *testing.T) {
		s := open(t)
		for i := 0; i < 3; i++ {
			g := newGame(fmt.Sprintf("ab-%d", i), "alice", "bob", baseTime.Add(time.Duration(i)*time.Minute))
			require.NoError(t, s.CreateGame(ctx, g))
		}
		require.NoError(t, s.CreateGame(ctx, newGame("cb", "carol", "bob", baseTime.Add(time.Hour))))

		alice, err := s.ListGames(ctx, "alice", 0)
		require.NoError(t, err)
		require.Len(t, alice, 3)
		assert.Equal(t, "ab-2", alice[0].ID)
		assert.Equal(t, "ab-0", alice[2].ID)

		bob, err := s.ListGames(ctx, "bob", 2)
		require.NoError(t, err)
		require.Len(t, bob, 2)
		assert.Equal(t, "cb", bob[0].ID)
		assert.Equal(t, "ab-2", bob[1].ID)

		none, err := s.ListGames(ctx, "dave", 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("duplicate pending invite", func(t *testing.T) {
		s := open(t)
		first := newInvite(t, "alice", "bob", baseTime, time.Hour)
		require.NoError(t, s.CreateInvite(ctx, first, baseTime))
		assert.Equal(t, int64(1), first.Version)

		dup := newInvite(t, "alice", "bob", baseTime, time.Hour)
		assert.ErrorIs(t, s.CreateInvite(ctx, dup, baseTime), invite.ErrDuplicatePending)

		// The reverse direction is a different pair.
		reverse := newInvite(t, "bob", "alice", baseTime, time.Hour)
		assert.NoError(t, s.CreateInvite(ctx, reverse, baseTime))

		// Once the first one lapses a new one may be sent.
		later := baseTime.Add(2 * time.Hour)
		again := newInvite(t, "alice", "bob", later, time.Hour)
		assert.NoError(t, s.CreateInvite(ctx, again, later))
	})

	t.Run("declined invite frees the pair", func(t *testing.T) {
		s := open(t)
		inv := newInvite(t, "alice", "bob", baseTime, 0)
		require.NoError(t, s.CreateInvite(ctx, inv, baseTime))

		inv.Decline(baseTime)
		require.NoError(t, s.UpdateInvite(ctx, inv))
		assert.Equal(t, int64(2), inv.Version)

		got, err := s.GetInvite(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invite.StatusDeclined, got.Status)

		next := newInvite(t, "alice", "bob", baseTime, 0)
		assert.NoError(t, s.CreateInvite(ctx, next, baseTime))
	})

	t.Run("accept invite is atomic", func(t *testing.T) {
		s := open(t)
		inv := newInvite(t, "alice", "bob", baseTime, 0)
		require.NoError(t, s.CreateInvite(ctx, inv, baseTime))

		stale, err := s.GetInvite(ctx, inv.ID)
		require.NoError(t, err)

		g := newGame("g1", "alice", "bob", baseTime)
		inv.Accept(g.ID, baseTime)
		require.NoError(t, s.AcceptInvite(ctx, inv, g))
		assert.Equal(t, int64(2), inv.Version)
		assert.Equal(t, int64(1), g.Version)

		got, err := s.GetInvite(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invite.StatusAccepted, got.Status)
		assert.Equal(t, "g1", got.GameID)
		_, err = s.GetGame(ctx, "g1")
		require.NoError(t, err)

		// A second responder holding the old version loses and no game appears.
		g2 := newGame("g2", "alice", "bob", baseTime)
		stale.Accept(g2.ID, baseTime)
		assert.ErrorIs(t, s.AcceptInvite(ctx, stale, g2), ErrConflict)
		_, err = s.GetGame(ctx, "g2")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetInvite(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list pending invites", func(t *testing.T) {
		s := open(t)
		senders := []string{"alice", "carol", "dave"}
		var invs []*invite.Invite
		for i, sender := range senders {
			created := baseTime.Add(time.Duration(i) * time.Minute)
			inv := newInvite(t, sender, "bob", created, 0)
			require.NoError(t, s.CreateInvite(ctx, inv, created))
			invs = append(invs, inv)
		}
		invs[1].Decline(baseTime)
		require.NoError(t, s.UpdateInvite(ctx, invs[1]))

		got, err := s.ListPendingInvites(ctx, "bob", baseTime, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "dave", got[0].Sender)
		assert.Equal(t, "alice", got[1].Sender)

		sent, err := s.ListPendingInvites(ctx, "alice", baseTime, 0)
		require.NoError(t, err)
		assert.Empty(t, sent)
	})

	t.Run("expired invites do not take list slots", func(t *testing.T) {
		s := open(t)
		alive := newInvite(t, "alice", "bob", baseTime, 0)
		require.NoError(t, s.CreateInvite(ctx, alive, baseTime))
		// Newer invites with a short TTL sort ahead of the open one.
		for i, sender := range []string{"carol", "dave", "erin"} {
			created := baseTime.Add(time.Duration(i+1) * time.Minute)
			inv := newInvite(t, sender, "bob", created, time.Minute)
			require.NoError(t, s.CreateInvite(ctx, inv, created))
		}
		now := baseTime.Add(time.Hour)

		got, err := s.ListPendingInvites(ctx, "bob", now, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, alive.ID, got[0].ID)

		// Expiry is exclusive: an invite is closed at its ExpiresAt.
		edge := baseTime.Add(3 * time.Minute)
		got, err = s.ListPendingInvites(ctx, "bob", edge, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "erin", got[0].Sender)
		assert.Equal(t, "alice", got[1].Sender)
	})
}
