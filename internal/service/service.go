// internal/service/service.go
//
// Application layer for Worduel.
// Responsibilities:
//   - Resolve the acting player's requests against stored games and invites.
//   - Run every mutation as load → engine transition → conditional write.
//   - Hand invite acceptance to the engine and persist both records at once.
//
// Notes:
//   - Nothing is retried here. A stale write surfaces as store.ErrConflict
//     and the caller decides whether to re-read and resubmit.
//   - Games are private to their two players; anyone else gets ErrNotFound.

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
	"github.com/robalobadob/worduel/internal/store"
)

const (
	DefaultWordOptions = 4
	MaxWordOptions     = 20
)

// WordSource supplies candidate round words.
type WordSource interface {
	Random(n int) []string
}

// Options tunes a Service. Zero values fall back to sensible defaults.
type Options struct {
	Now           func() time.Time
	DefaultRounds int           // rounds for invite games and unspecified challenges
	InviteTTL     time.Duration // 0 disables invite expiry
}

// Service coordinates the engine with persistence.
type Service struct {
	store         store.Store
	engine        *game.Engine
	words         WordSource
	now           func() time.Time
	defaultRounds int
	inviteTTL     time.Duration
}

// New wires a Service.
func New(st store.Store, engine *game.Engine, words WordSource, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultRounds < 1 {
		opts.DefaultRounds = game.DefaultRounds
	}
	return &Service{
		store:         st,
		engine:        engine,
		words:         words,
		now:           opts.Now,
		defaultRounds: opts.DefaultRounds,
		inviteTTL:     opts.InviteTTL,
	}
}

// ------------------------------ games --------------------------------------

// CreateGame starts a direct challenge: actor sets targetWord and opponent
// guesses first. totalRounds 0 means the configured default.
func (s *Service) CreateGame(ctx context.Context, actor, opponent, targetWord string, totalRounds int) (*game.Game, error) {
	if totalRounds == 0 {
		totalRounds = s.defaultRounds
	}
	g, err := s.engine.Create(actor, opponent, targetWord, totalRounds)
	if err != nil {
		log.Debug().Err(err).Str("actor", actor).Msg("create game rejected")
		return nil, err
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("store game")
		return nil, err
	}
	log.Info().Str("gameId", g.ID).Str("status", string(g.Status)).
		Int("rounds", g.TotalRounds).Msg("game created")
	return g, nil
}

// GetGame returns a game the actor takes part in.
func (s *Service) GetGame(ctx context.Context, actor, id string) (*game.Game, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.HasPlayer(actor) {
		return nil, store.ErrNotFound
	}
	return g, nil
}

// ListGames returns the actor's games, newest first.
func (s *Service) ListGames(ctx context.Context, actor string, limit int) ([]*game.Game, error) {
	return s.store.ListGames(ctx, actor, limit)
}

// SetRoundWord lets the current word-setter choose the round word.
func (s *Service) SetRoundWord(ctx context.Context, actor, id, word string) (*game.Game, error) {
	return s.mutateGame(ctx, actor, id, "set word", func(g *game.Game) error {
		return s.engine.SetRoundWord(g, actor, word)
	})
}

// SubmitGuess applies the actor's guess and returns its evaluation along
// with the committed game.
func (s *Service) SubmitGuess(ctx context.Context, actor, id, guess string) (game.GuessResult, *game.Game, error) {
	var res game.GuessResult
	g, err := s.mutateGame(ctx, actor, id, "guess", func(g *game.Game) error {
		var err error
		res, err = s.engine.SubmitGuess(g, actor, guess)
		return err
	})
	if err != nil {
		return game.GuessResult{}, nil, err
	}
	return res, g, nil
}

// Abandon ends a running game on behalf of one of its players.
func (s *Service) Abandon(ctx context.Context, actor, id string) (*game.Game, error) {
	return s.mutateGame(ctx, actor, id, "abandon", func(g *game.Game) error {
		return s.engine.Abandon(g, actor)
	})
}

// mutateGame loads id, applies fn, and commits only if nobody else wrote
// the game in between. The load is not filtered by participant: the engine
// answers a non-player with ErrNotYourTurn.
func (s *Service) mutateGame(ctx context.Context, actor, id, op string, fn func(*game.Game) error) (*game.Game, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		log.Debug().Err(err).Str("gameId", id).Str("actor", actor).Str("op", op).Msg("transition rejected")
		return nil, err
	}
	if err := s.store.UpdateGame(ctx, g); err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Debug().Str("gameId", id).Str("op", op).Msg("stale write")
		} else {
			log.Error().Err(err).Str("gameId", id).Str("op", op).Msg("update game")
		}
		return nil, err
	}
	log.Info().Str("gameId", g.ID).Str("op", op).Int("round", g.CurrentRound).
		Str("status", string(g.Status)).Msg("game updated")
	return g, nil
}

// ----------------------------- invites -------------------------------------

// CreateInvite sends a duel invitation from sender to receiver.
func (s *Service) CreateInvite(ctx context.Context, sender, receiver, message string) (*invite.Invite, error) {
	now := s.now()
	inv, err := invite.New(invite.CreateInput{
		Sender:   sender,
		Receiver: receiver,
		Message:  message,
		TTL:      s.inviteTTL,
	}, now)
	if err != nil {
		log.Debug().Err(err).Str("actor", sender).Msg("create invite rejected")
		return nil, err
	}
	if err := s.store.CreateInvite(ctx, inv, now); err != nil {
		if errors.Is(err, invite.ErrDuplicatePending) {
			log.Debug().Str("sender", inv.Sender).Str("receiver", inv.Receiver).Msg("duplicate invite")
		} else {
			log.Error().Err(err).Str("inviteId", inv.ID).Msg("store invite")
		}
		return nil, err
	}
	log.Info().Str("inviteId", inv.ID).Str("sender", inv.Sender).Str("receiver", inv.Receiver).Msg("invite sent")
	return inv, nil
}

// ListInvites returns open invites addressed to actor, newest first.
func (s *Service) ListInvites(ctx context.Context, actor string, limit int) ([]*invite.Invite, error) {
	return s.store.ListPendingInvites(ctx, actor, s.now(), limit)
}

// RespondInvite accepts or declines an invite. Accepting creates the duel
// (the sender sets the first word) and returns it; declining returns a nil
// game.
func (s *Service) RespondInvite(ctx context.Context, actor, id string, accept bool) (*invite.Invite, *game.Game, error) {
	inv, err := s.store.GetInvite(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	if err := inv.CheckRespond(actor, now); err != nil {
		log.Debug().Err(err).Str("inviteId", id).Str("actor", actor).Msg("respond rejected")
		return nil, nil, err
	}

	if !accept {
		inv.Decline(now)
		if err := s.store.UpdateInvite(ctx, inv); err != nil {
			s.logInviteWriteErr(err, id)
			return nil, nil, err
		}
		log.Info().Str("inviteId", id).Msg("invite declined")
		return inv, nil, nil
	}

	g, err := s.engine.CreateWaiting(inv.Sender, inv.Receiver, s.defaultRounds)
	if err != nil {
		return nil, nil, fmt.Errorf("create game for invite %s: %w", id, err)
	}
	inv.Accept(g.ID, now)
	if err := s.store.AcceptInvite(ctx, inv, g); err != nil {
		s.logInviteWriteErr(err, id)
		return nil, nil, err
	}
	log.Info().Str("inviteId", id).Str("gameId", g.ID).Msg("invite accepted")
	return inv, g, nil
}

func (s *Service) logInviteWriteErr(err error, id string) {
	if errors.Is(err, store.ErrConflict) {
		log.Debug().Str("inviteId", id).Msg("stale invite write")
		return
	}
	log.Error().Err(err).Str("inviteId", id).Msg("update invite")
}

// ------------------------------ words --------------------------------------

// WordOptions suggests count random dictionary words for a word-setter.
// count <= 0 means DefaultWordOptions; larger requests are capped.
func (s *Service) WordOptions(count int) []string {
	switch {
	case count <= 0:
		count = DefaultWordOptions
	case count > MaxWordOptions:
		count = MaxWordOptions
	}
	return s.words.Random(count)
}

// Now exposes the service clock to callers that render time-dependent views.
func (s *Service) Now() time.Time { return s.now() }
