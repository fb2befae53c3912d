// Package invite models duel invitations between two players.
//
// An invite is created PENDING by its sender and answered once by its
// receiver: accepting hands off to the game engine and links the new game,
// declining just closes it. Non-PENDING invites never change again. A
// PENDING invite past its expiry reads as EXPIRED and can no longer be
// answered.
package invite

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/robalobadob/worduel/internal/game"
)

// MaxMessageLength bounds the optional invite message, in characters.
const MaxMessageLength = 200

var (
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrDuplicatePending = errors.New("a pending invite to this player already exists")
	ErrNotRecipient     = errors.New("only the receiver may respond to this invite")
	ErrMessageTooLong   = errors.New("invite message too long")
)

// Status represents the lifecycle status of an invite.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusExpired  Status = "EXPIRED"
)

// Invite is a request from Sender to Receiver to start a duel.
type Invite struct {
	ID        string
	Sender    string
	Receiver  string
	Status    Status
	GameID    string // set exactly when Status becomes ACCEPTED
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time // zero means the invite never expires

	// Version is bumped by the store on every committed write.
	Version int64
}

// CreateInput describes a new invite.
type CreateInput struct {
	Sender   string
	Receiver string
	Message  string
	TTL      time.Duration // <= 0 disables expiry
}

// New validates input and returns a PENDING invite. It does not check for
// duplicates; stores do that atomically with the insert.
func New(input CreateInput, now time.Time) (*Invite, error) {
	sender := strings.TrimSpace(input.Sender)
	receiver := strings.TrimSpace(input.Receiver)
	msg := strings.TrimSpace(input.Message)

	if sender == "" || receiver == "" {
		return nil, fmt.Errorf("%w: sender and receiver are required", game.ErrInvalidConfig)
	}
	if sender == receiver {
		return nil, ErrSelfInvite
	}
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		return nil, fmt.Errorf("%w: at most %d characters", ErrMessageTooLong, MaxMessageLength)
	}

	now = now.UTC()
	inv := &Invite{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Status:    StatusPending,
		Message:   msg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.TTL > 0 {
		inv.ExpiresAt = now.Add(input.TTL)
	}
	return inv, nil
}

// Open reports whether the invite is PENDING and not yet expired.
func (i *Invite) Open(now time.Time) bool {
	if i.Status != StatusPending {
		return false
	}
	return i.ExpiresAt.IsZero() || now.Before(i.ExpiresAt)
}

// EffectiveStatus is Status, with lapsed PENDING invites shown as EXPIRED.
func (i *Invite) EffectiveStatus(now time.Time) Status {
	if i.Status == StatusPending && !i.Open(now) {
		return StatusExpired
	}
	return i.Status
}

// CheckRespond validates that responder may answer the invite now.
func (i *Invite) CheckRespond(responder string, now time.Time) error {
	if !i.Open(now) {
		return fmt.Errorf("%w: invite is %s", game.ErrInvalidState, i.EffectiveStatus(now))
	}
	if responder != i.Receiver {
		return ErrNotRecipient
	}
	return nil
}

// Accept links the created game and closes the invite.
func (i *Invite) Accept(gameID string, now time.Time) {
	i.Status = StatusAccepted
	i.GameID = gameID
	i.UpdatedAt = now.UTC()
}

// Decline closes the invite without a game.
func (i *Invite) Decline(now time.Time) {
	i.Status = StatusDeclined
	i.UpdatedAt = now.UTC()
}

// Clone returns a copy of the invite.
func (i *Invite) Clone() *Invite {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
