// internal/store/redis.go
//
// Redis implementation of Store.
//
// Key layout (all values are JSON):
//   worduel:game:{id}                          game snapshot (Version inside)
//   worduel:player:{id}:games                  ZSET of game ids, score = created unix ms
//   worduel:invite:{id}                        invite snapshot
//   worduel:player:{id}:invites                ZSET of received PENDING invite ids
//   worduel:invite:pending:{sender}:{receiver} id of the latest PENDING invite for the pair
//
// Conditional writes use WATCH/MULTI/EXEC: the watched key is re-read, its
// version compared, and the write queued in a transaction that Redis aborts
// if another client touched the key in between (reported as ErrConflict).

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
)

const keyPrefix = "worduel:"

func gameKey(id string) string          { return fmt.Sprintf("%sgame:%s", keyPrefix, id) }
func playerGamesKey(id string) string   { return fmt.Sprintf("%splayer:%s:games", keyPrefix, id) }
func inviteKey(id string) string        { return fmt.Sprintf("%sinvite:%s", keyPrefix, id) }
func playerInvitesKey(id string) string { return fmt.Sprintf("%splayer:%s:invites", keyPrefix, id) }
func pendingKey(sender, receiver string) string {
	return fmt.Sprintf("%sinvite:pending:%s:%s", keyPrefix, sender, receiver)
}

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis { return &Redis{client: client} }

// OpenRedis connects to url (redis://host:port/db) and pings the server.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedis(client), nil
}

// getter is satisfied by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// watch runs fn inside WATCH keys and maps an aborted EXEC to ErrConflict.
func (r *Redis) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	err := r.client.Watch(ctx, fn, keys...)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// ------------------------------ games --------------------------------------

func (r *Redis) CreateGame(ctx context.Context, g *game.Game) error {
	key := gameKey(g.ID)
	return r.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("game %s already exists", g.ID)
		}
		next, data, err := encodeGame(g, 1)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			queueGameInsert(ctx, p, next, data)
			return nil
		}); err != nil {
			return err
		}
		g.Version = next.Version
		return nil
	}, key)
}

func encodeGame(g *game.Game, version int64) (*game.Game, []byte, error) {
	next := g.Clone()
	next.Version = version
	data, err := json.Marshal(next)
	if err != nil {
		return nil, nil, fmt.Errorf("encode game: %w", err)
	}
	return next, data, nil
}

func queueGameInsert(ctx context.Context, p redis.Pipeliner, g *game.Game, data []byte) {
	p.Set(ctx, gameKey(g.ID), data, 0)
	member := redis.Z{Score: float64(g.CreatedAt.UnixMilli()), Member: g.ID}
	p.ZAdd(ctx, playerGamesKey(g.PlayerA()), member)
	p.ZAdd(ctx, playerGamesKey(g.PlayerB()), member)
}

func (r *Redis) GetGame(ctx context.Context, id string) (*game.Game, error) {
	return getGame(ctx, r.client, id)
}

func getGame(ctx context.Context, c getter, id string) (*game.Game, error) {
	data, err := c.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &g, nil
}

func (r *Redis) UpdateGame(ctx context.Context, g *game.Game) error {
	key := gameKey(g.ID)
	return r.watch(ctx, func(tx *redis.Tx) error {
		cur, err := getGame(ctx, tx, g.ID)
		if err != nil {
			return err
		}
		if cur.Version != g.Version {
			return ErrConflict
		}
		next, data, err := encodeGame(g, g.Version+1)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, data, 0)
			return nil
		}); err != nil {
			return err
		}
		g.Version = next.Version
		return nil
	}, key)
}

func (r *Redis) ListGames(ctx context.Context, playerID string, limit int) ([]*game.Game, error) {
	ids, err := r.client.ZRevRange(ctx, playerGamesKey(playerID), 0, int64(normalizeLimit(limit))-1).Result()
	if err != nil {
		return nil, err
	}
	out := []*game.Game{}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var g game.Game
		if err := json.Unmarshal([]byte(s), &g); err != nil {
			return nil, fmt.Errorf("decode game: %w", err)
		}
		out = append(out, &g)
	}
	sortGamesNewest(out)
	return out, nil
}

// ----------------------------- invites -------------------------------------

func (r *Redis) CreateInvite(ctx context.Context, inv *invite.Invite, now time.Time) error {
	pk := pendingKey(inv.Sender, inv.Receiver)
	return r.watch(ctx, func(tx *redis.Tx) error {
		prevID, err := tx.Get(ctx, pk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if prevID != "" {
			prev, err := getInvite(ctx, tx, prevID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if prev != nil && prev.Open(now) {
				return invite.ErrDuplicatePending
			}
		}

		next := inv.Clone()
		next.Version = 1
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode invite: %w", err)
		}
		if _, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, inviteKey(next.ID), data, 0)
			p.Set(ctx, pk, next.ID, 0)
			// A lapsed invite for the pair can never be answered again.
			if prevID != "" {
				p.ZRem(ctx, playerInvitesKey(next.Receiver), prevID)
			}
			p.ZAdd(ctx, playerInvitesKey(next.Receiver), redis.Z{
				Score:  float64(next.CreatedAt.UnixMilli()),
				Member: next.ID,
			})
			return nil
		}); err != nil {
			return err
		}
		inv.Version = 1
		return nil
	}, pk)
}

func (r *Redis) GetInvite(ctx context.Context, id string) (*invite.Invite, error) {
	return getInvite(ctx, r.client, id)
}

func getInvite(ctx context.Context, c getter, id string) (*invite.Invite, error) {
	data, err := c.Get(ctx, inviteKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var inv invite.Invite
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("decode invite: %w", err)
	}
	return &inv, nil
}

func (r *Redis) UpdateInvite(ctx context.Context, inv *invite.Invite) error {
	return r.updateInvite(ctx, inv, nil)
}

func (r *Redis) AcceptInvite(ctx context.Context, inv *invite.Invite, g *game.Game) error {
	return r.updateInvite(ctx, inv, g)
}

// updateInvite commits inv and, when g is non-nil, inserts g in the same
// MULTI. Once the invite leaves PENDING it is removed from the receiver's
// index, and the pair's pending pointer is dropped if it still names it.
func (r *Redis) updateInvite(ctx context.Context, inv *invite.Invite, g *game.Game) error {
	ik := inviteKey(inv.ID)
	pk := pendingKey(inv.Sender, inv.Receiver)
	keys := []string{ik, pk}
	if g != nil {
		keys = append(keys, gameKey(g.ID))
	}
	return r.watch(ctx, func(tx *redis.Tx) error {
		cur, err := getInvite(ctx, tx, inv.ID)
		if err != nil {
			return err
		}
		if cur.Version != inv.Version {
			return ErrConflict
		}
		pendingID, err := tx.Get(ctx, pk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		var (
			nextGame *game.Game
			gameData []byte
		)
		if g != nil {
			n, err := tx.Exists(ctx, gameKey(g.ID)).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("game %s already exists", g.ID)
			}
			if nextGame, gameData, err = encodeGame(g, 1); err != nil {
				return err
			}
		}

		next := inv.Clone()
		next.Version = inv.Version + 1
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode invite: %w", err)
		}

		if _, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, ik, data, 0)
			if next.Status != invite.StatusPending {
				p.ZRem(ctx, playerInvitesKey(next.Receiver), next.ID)
				if pendingID == next.ID {
					p.Del(ctx, pk)
				}
			}
			if nextGame != nil {
				queueGameInsert(ctx, p, nextGame, gameData)
			}
			return nil
		}); err != nil {
			return err
		}
		inv.Version = next.Version
		if nextGame != nil {
			g.Version = nextGame.Version
		}
		return nil
	}, keys...)
}

func (r *Redis) ListPendingInvites(ctx context.Context, receiverID string, now time.Time, limit int) ([]*invite.Invite, error) {
	ids, err := r.client.ZRevRange(ctx, playerInvitesKey(receiverID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := []*invite.Invite{}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = inviteKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var inv invite.Invite
		if err := json.Unmarshal([]byte(s), &inv); err != nil {
			return nil, fmt.Errorf("decode invite: %w", err)
		}
		if inv.Open(now) {
			out = append(out, &inv)
		}
	}
	sortInvitesNewest(out)
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close closes the Redis client.
func (r *Redis) Close() error { return r.client.Close() }
