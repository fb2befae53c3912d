// internal/game/engine.go
//
// Core state machine for a Worduel game.
// Responsibilities:
//   - Create games (direct challenge with a first word, or a word-less
//     game for the invite handoff).
//   - Let the current word-setter choose the round word.
//   - Validate and apply guesses from the current guesser.
//   - Close rounds: score, record history, swap roles or finish the game.
//
// Notes:
//   - Every precondition is checked before the game is mutated, so a failed
//     call leaves the Game exactly as it was.
//   - The engine works on an in-memory *Game; atomic persistence is the
//     caller's job (see internal/service).
//
// State transitions:
//
//	WAITING ──SetRoundWord──▶ IN_PROGRESS ──round closes──▶ WAITING (next round)
//	                                       └─last round───▶ COMPLETED
//	any non-terminal ──Abandon──▶ ABANDONED
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WordValidator reports dictionary membership for a candidate round word.
type WordValidator interface {
	Contains(word string) bool
}

// Engine applies Worduel rules to games.
type Engine struct {
	words WordValidator
	now   func() time.Time
	newID func() string
}

// NewEngine returns an Engine backed by the given dictionary.
// A nil clock defaults to time.Now.
func NewEngine(words WordValidator, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{words: words, now: now, newID: uuid.NewString}
}

// GuessResult is the outcome of a single SubmitGuess call.
type GuessResult struct {
	Feedback      []LetterFeedback `json:"feedback"`
	IsCorrect     bool             `json:"isCorrect"`
	RoundComplete bool             `json:"roundComplete"`
	PointsAwarded int              `json:"pointsAwarded"`
}

// Create allocates a game whose first word is already chosen. playerA set
// initialWord and playerB guesses it, so the game starts IN_PROGRESS.
func (e *Engine) Create(playerA, playerB, initialWord string, totalRounds int) (*Game, error) {
	word, ok := normalize(initialWord)
	if !ok || !e.validWord(word) {
		return nil, fmt.Errorf("%w: %q is not in the dictionary", ErrInvalidWord, initialWord)
	}
	g, err := e.newGame(playerA, playerB, totalRounds)
	if err != nil {
		return nil, err
	}
	g.TargetWord = word
	g.Status = StatusInProgress
	return g, nil
}

// CreateWaiting allocates a game with no word yet. It backs invite
// acceptance: playerA (the inviter) sets the first word once the game exists.
func (e *Engine) CreateWaiting(playerA, playerB string, totalRounds int) (*Game, error) {
	return e.newGame(playerA, playerB, totalRounds)
}

func (e *Engine) newGame(playerA, playerB string, totalRounds int) (*Game, error) {
	playerA, playerB = strings.TrimSpace(playerA), strings.TrimSpace(playerB)
	if playerA == "" || playerB == "" {
		return nil, fmt.Errorf("%w: both players are required", ErrInvalidConfig)
	}
	if playerA == playerB {
		return nil, fmt.Errorf("%w: a player cannot duel themselves", ErrInvalidConfig)
	}
	if totalRounds < 1 {
		return nil, fmt.Errorf("%w: totalRounds must be at least 1, got %d", ErrInvalidConfig, totalRounds)
	}

	now := e.now().UTC()
	return &Game{
		ID:           e.newID(),
		Players:      [playerSlots]string{playerA, playerB},
		Roles:        Roles{Setter: playerA, Guesser: playerB},
		Guesses:      []string{},
		Status:       StatusWaiting,
		TotalRounds:  totalRounds,
		CurrentRound: 1,
		History:      []RoundRecord{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetRoundWord lets the current word-setter choose the secret word of a
// waiting round.
func (e *Engine) SetRoundWord(g *Game, requester, word string) error {
	if g.Status != StatusWaiting {
		return fmt.Errorf("%w: cannot set a word while game is %s", ErrInvalidState, g.Status)
	}
	if requester != g.Roles.Setter {
		return fmt.Errorf("%w: only the word-setter may choose this round's word", ErrNotYourTurn)
	}
	w, ok := normalize(word)
	if !ok || !e.validWord(w) {
		return fmt.Errorf("%w: %q is not in the dictionary", ErrInvalidWord, word)
	}

	g.TargetWord = w
	g.Status = StatusInProgress
	g.UpdatedAt = e.now().UTC()
	return nil
}

// SubmitGuess applies a guess from the current guesser.
//
// The round closes on a correct guess or on the MaxGuesses-th attempt. A
// solved round credits Points(len(guesses)) to the guesser, an unsolved one
// credits 0. Closing the last round completes the game; otherwise roles swap
// and the game waits for the next word.
func (e *Engine) SubmitGuess(g *Game, requester, guess string) (GuessResult, error) {
	if g.Status != StatusInProgress {
		return GuessResult{}, fmt.Errorf("%w: cannot guess while game is %s", ErrInvalidState, g.Status)
	}
	if requester != g.Roles.Guesser {
		return GuessResult{}, fmt.Errorf("%w: only the guesser may submit guesses", ErrNotYourTurn)
	}
	guess, ok := normalize(guess)
	if !ok || len(guess) != WordLength {
		return GuessResult{}, fmt.Errorf("%w: guess must be exactly %d letters", ErrInvalidGuessFormat, WordLength)
	}

	g.Guesses = append(g.Guesses, guess)
	fb := Evaluate(guess, g.TargetWord)
	res := GuessResult{
		Feedback:  fb,
		IsCorrect: AllCorrect(fb),
	}
	res.RoundComplete = res.IsCorrect || len(g.Guesses) >= MaxGuesses

	now := e.now().UTC()
	g.UpdatedAt = now
	if !res.RoundComplete {
		return res, nil
	}

	if res.IsCorrect {
		res.PointsAwarded = Points(len(g.Guesses))
	}
	g.Points[g.slot(requester)] += res.PointsAwarded
	g.History = append(g.History, RoundRecord{
		Round:         g.CurrentRound,
		WordSetter:    g.Roles.Setter,
		Guesser:       g.Roles.Guesser,
		TargetWord:    g.TargetWord,
		Guesses:       append([]string(nil), g.Guesses...),
		PointsAwarded: res.PointsAwarded,
		Solved:        res.IsCorrect,
		CompletedAt:   now,
	})

	if g.CurrentRound >= g.TotalRounds {
		g.finish(now)
		return res, nil
	}

	g.CurrentRound++
	g.Roles = Swap(g.Roles)
	g.TargetWord = ""
	g.Guesses = []string{}
	g.Status = StatusWaiting
	return res, nil
}

// Abandon cancels a running game on behalf of one of its players.
func (e *Engine) Abandon(g *Game, requester string) error {
	if g.Status.Terminal() {
		return fmt.Errorf("%w: game is already %s", ErrInvalidState, g.Status)
	}
	if !g.HasPlayer(requester) {
		return fmt.Errorf("%w: not a participant", ErrNotYourTurn)
	}
	now := e.now().UTC()
	g.Status = StatusAbandoned
	g.UpdatedAt = now
	g.CompletedAt = &now
	return nil
}

// finish closes the game and decides the outcome. Equal points are a draw.
func (g *Game) finish(now time.Time) {
	a, b := g.Points[0], g.Points[1]
	switch {
	case a > b:
		g.Outcome = &Outcome{Winner: g.Players[0]}
	case b > a:
		g.Outcome = &Outcome{Winner: g.Players[1]}
	default:
		g.Outcome = &Outcome{Draw: true}
	}
	g.Status = StatusCompleted
	g.CompletedAt = &now
}

func (e *Engine) validWord(w string) bool {
	return len(w) == WordLength && e.words != nil && e.words.Contains(w)
}

// normalize trims s and uppercases it. ok is false unless the trimmed input
// is non-empty ASCII letters. Only a–z is folded, so "ſpeed" never becomes
// SPEED.
func normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		default:
			return "", false
		}
	}
	return string(b), true
}
