// internal/game/types.go
//
// Core type definitions for the Worduel game engine.
// Defines:
//   - LetterStatus / LetterFeedback: per-letter result of a guess.
//   - Status: lifecycle phase of a duel.
//   - Roles, Outcome, RoundRecord: round bookkeeping.
//   - Game: state for a single two-player, multi-round duel.

package game

import (
	"time"
)

const (
	WordLength    = 5
	MaxGuesses    = 6
	DefaultRounds = 3
	playerSlots   = 2
)

// LetterStatus is the evaluation of a single letter in a guess.
type LetterStatus string

const (
	LetterCorrect LetterStatus = "CORRECT" // right letter, right position
	LetterPresent LetterStatus = "PRESENT" // in the word, elsewhere
	LetterAbsent  LetterStatus = "ABSENT"  // not (or no longer) in the word
)

// LetterFeedback pairs a guessed letter with its status.
type LetterFeedback struct {
	Letter string       `json:"letter"`
	Status LetterStatus `json:"status"`
}

// Status is the lifecycle phase of a Game.
type Status string

const (
	StatusWaiting    Status = "WAITING"     // round word not chosen yet
	StatusInProgress Status = "IN_PROGRESS" // guesser may submit
	StatusCompleted  Status = "COMPLETED"
	StatusAbandoned  Status = "ABANDONED"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Roles holds who sets and who guesses in the current round.
type Roles struct {
	Setter  string
	Guesser string
}

// Outcome is present only on a completed game. Exactly one of Winner or
// Draw is meaningful.
type Outcome struct {
	Winner string
	Draw   bool
}

// RoundRecord is appended once per closed round and never changed.
type RoundRecord struct {
	Round         int       `json:"round"`
	WordSetter    string    `json:"wordSetter"`
	Guesser       string    `json:"guesser"`
	TargetWord    string    `json:"targetWord"`
	Guesses       []string  `json:"guesses"`
	PointsAwarded int       `json:"pointsAwarded"`
	Solved        bool      `json:"solved"`
	CompletedAt   time.Time `json:"completedAt"`
}

// Game holds the state of a single duel between two players.
type Game struct {
	ID           string
	Players      [playerSlots]string // slot 0 = player A, slot 1 = player B
	Roles        Roles
	TargetWord   string   // uppercase; empty while waiting for the setter
	Guesses      []string // guesses of the open round (uppercase)
	Status       Status
	TotalRounds  int
	CurrentRound int
	Points       [playerSlots]int // indexed like Players
	History      []RoundRecord
	Outcome      *Outcome // non-nil only when Status == StatusCompleted
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time

	// Version is bumped by the store on every committed write.
	Version int64
}

// PlayerA returns the first participant.
func (g *Game) PlayerA() string { return g.Players[0] }

// PlayerB returns the second participant.
func (g *Game) PlayerB() string { return g.Players[1] }

// slot returns the Players index of id, or -1.
func (g *Game) slot(id string) int {
	for i, p := range g.Players {
		if p == id {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether id takes part in the game.
func (g *Game) HasPlayer(id string) bool { return g.slot(id) >= 0 }

// PointsOf returns the accumulated score of a participant (0 for strangers).
func (g *Game) PointsOf(id string) int {
	if i := g.slot(id); i >= 0 {
		return g.Points[i]
	}
	return 0
}

// Winner returns the winning player. ok is false while the game runs, after
// abandonment, and on a draw.
func (g *Game) Winner() (id string, ok bool) {
	if g.Outcome == nil || g.Outcome.Draw {
		return "", false
	}
	return g.Outcome.Winner, true
}

// Clone returns a deep copy that shares no slices or pointers with g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Guesses = cloneStrings(g.Guesses)
	if g.History != nil {
		c.History = make([]RoundRecord, len(g.History))
		for i, r := range g.History {
			r.Guesses = cloneStrings(r.Guesses)
			c.History[i] = r
		}
	}
	if g.Outcome != nil {
		o := *g.Outcome
		c.Outcome = &o
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
