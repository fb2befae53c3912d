// internal/httpserver/views.go
//
// JSON shapes returned to clients. Views are built per viewer: the secret
// word of an open round is blanked for whoever is guessing it.

package httpserver

import (
	"time"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
)

type gameView struct {
	ID                string             `json:"id"`
	PlayerA           string             `json:"playerA"`
	PlayerB           string             `json:"playerB"`
	CurrentWordSetter string             `json:"currentWordSetter"`
	CurrentGuesser    string             `json:"currentGuesser"`
	TargetWord        string             `json:"targetWord"`
	Guesses           []string           `json:"guesses"`
	Status            game.Status        `json:"status"`
	TotalRounds       int                `json:"totalRounds"`
	CurrentRound      int                `json:"currentRound"`
	Points            map[string]int     `json:"points"`
	RoundHistory      []game.RoundRecord `json:"roundHistory"`
	Winner            string             `json:"winner,omitempty"`
	Draw              bool               `json:"draw"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	CompletedAt       *time.Time         `json:"completedAt,omitempty"`
	Version           int64              `json:"version"`
}

func newGameView(g *game.Game, viewer string) gameView {
	v := gameView{
		ID:                g.ID,
		PlayerA:           g.PlayerA(),
		PlayerB:           g.PlayerB(),
		CurrentWordSetter: g.Roles.Setter,
		CurrentGuesser:    g.Roles.Guesser,
		TargetWord:        g.TargetWord,
		Guesses:           g.Guesses,
		Status:            g.Status,
		TotalRounds:       g.TotalRounds,
		CurrentRound:      g.CurrentRound,
		Points: map[string]int{
			g.PlayerA(): g.PointsOf(g.PlayerA()),
			g.PlayerB(): g.PointsOf(g.PlayerB()),
		},
		RoundHistory: g.History,
		Draw:         g.Outcome != nil && g.Outcome.Draw,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CompletedAt:  g.CompletedAt,
		Version:      g.Version,
	}
	if w, ok := g.Winner(); ok {
		v.Winner = w
	}
	if g.Status == game.StatusInProgress && viewer == g.Roles.Guesser {
		v.TargetWord = ""
	}
	if v.Guesses == nil {
		v.Guesses = []string{}
	}
	if v.RoundHistory == nil {
		v.RoundHistory = []game.RoundRecord{}
	}
	return v
}

func newGameViews(gs []*game.Game, viewer string) []gameView {
	out := make([]gameView, 0, len(gs))
	for _, g := range gs {
		out = append(out, newGameView(g, viewer))
	}
	return out
}

type inviteView struct {
	ID         string        `json:"id"`
	SenderID   string        `json:"senderId"`
	ReceiverID string        `json:"receiverId"`
	Status     invite.Status `json:"status"`
	GameID     string        `json:"gameId,omitempty"`
	Message    string        `json:"message,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	ExpiresAt  *time.Time    `json:"expiresAt,omitempty"`
}

// newInviteView reports the status as seen at now, so lapsed invites read
// EXPIRED.
func newInviteView(inv *invite.Invite, now time.Time) inviteView {
	v := inviteView{
		ID:         inv.ID,
		SenderID:   inv.Sender,
		ReceiverID: inv.Receiver,
		Status:     inv.EffectiveStatus(now),
		GameID:     inv.GameID,
		Message:    inv.Message,
		CreatedAt:  inv.CreatedAt,
	}
	if !inv.ExpiresAt.IsZero() {
		t := inv.ExpiresAt
		v.ExpiresAt = &t
	}
	return v
}
