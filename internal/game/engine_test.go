package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordSet map[string]struct{}

func (w wordSet) Contains(word string) bool {
	_, ok := w[strings.ToUpper(word)]
	return ok
}

func newWordSet(words ...string) wordSet {
	w := wordSet{}
	for _, s := range words {
		w[s] = struct{}{}
	}
	return w
}

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	dict := newWordSet("CRANE", "SPEED", "PILOT", "GHOST", "APPLE", "MELON", "LEMON")
	e := NewEngine(dict, func() time.Time { return fixedNow })
	e.newID = func() string { return "game-1" }
	return e
}

// solveRound sets word (when waiting) and has the guesser solve it after
// misses wrong guesses.
func solveRound(t *testing.T, e *Engine, g *Game, word string, misses int) GuessResult {
	t.Helper()
	if g.Status == StatusWaiting {
		require.NoError(t, e.SetRoundWord(g, g.Roles.Setter, word))
	}
	guesser := g.Roles.Guesser
	for i := 0; i < misses; i++ {
		res, err := e.SubmitGuess(g, guesser, "zzzzz")
		require.NoError(t, err)
		require.False(t, res.RoundComplete)
	}
	res, err := e.SubmitGuess(g, guesser, word)
	require.NoError(t, err)
	require.True(t, res.IsCorrect)
	require.True(t, res.RoundComplete)
	return res
}

func TestCreate(t *testing.T) {
	e := newTestEngine()

	g, err := e.Create("alice", "bob", "crane", 3)
	require.NoError(t, err)

	assert.Equal(t, "game-1", g.ID)
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Equal(t, "CRANE", g.TargetWord)
	assert.Equal(t, 1, g.CurrentRound)
	assert.Equal(t, 3, g.TotalRounds)
	assert.Equal(t, Roles{Setter: "alice", Guesser: "bob"}, g.Roles)
	assert.Equal(t, "alice", g.PlayerA())
	assert.Equal(t, "bob", g.PlayerB())
	assert.Equal(t, [2]int{0, 0}, g.Points)
	assert.Empty(t, g.Guesses)
	assert.Nil(t, g.Outcome)
	assert.Nil(t, g.CompletedAt)
	assert.Equal(t, fixedNow, g.CreatedAt)
}

func TestCreateWaiting(t *testing.T) {
	e := newTestEngine()
	g, err := e.CreateWaiting("alice", "bob", 1)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, g.Status)
	assert.Empty(t, g.TargetWord)
	assert.Equal(t, Roles{Setter: "alice", Guesser: "bob"}, g.Roles)

	_, err = e.CreateWaiting("alice", "alice", 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = e.CreateWaiting("alice", "bob", 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCreateRejects(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name    string
		a, b    string
		word    string
		rounds  int
		wantErr error
	}{
		{"unknown word", "alice", "bob", "QWXYZ", 3, ErrInvalidWord},
		{"short word", "alice", "bob", "CRAN", 3, ErrInvalidWord},
		{"empty word", "alice", "bob", "", 3, ErrInvalidWord},
		{"blank word", "alice", "bob", "   ", 3, ErrInvalidWord},
		{"non-ASCII long s", "alice", "bob", "ſpeed", 3, ErrInvalidWord},
		{"zero rounds", "alice", "bob", "CRANE", 0, ErrInvalidConfig},
		{"negative rounds", "alice", "bob", "CRANE", -1, ErrInvalidConfig},
		{"self duel", "alice", "alice", "CRANE", 3, ErrInvalidConfig},
		{"missing opponent", "alice", " ", "CRANE", 3, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := e.Create(tt.a, tt.b, tt.word, tt.rounds)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, g)
		})
	}
}

func TestSetRoundWord(t *testing.T) {
	e := newTestEngine()
	g, err := e.CreateWaiting("alice", "bob", 3)
	require.NoError(t, err)

	err = e.SetRoundWord(g, "bob", "ghost")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, StatusWaiting, g.Status)

	for _, w := range []string{"xxxxx", "", "ſpeed", "spıed"} {
		err = e.SetRoundWord(g, "alice", w)
		assert.ErrorIs(t, err, ErrInvalidWord, w)
		assert.Equal(t, StatusWaiting, g.Status)
		assert.Empty(t, g.TargetWord)
	}

	require.NoError(t, e.SetRoundWord(g, "alice", " ghost "))
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Equal(t, "GHOST", g.TargetWord)

	err = e.SetRoundWord(g, "alice", "crane")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "GHOST", g.TargetWord)
}

func TestSubmitGuessWrongActorLeavesGameUnchanged(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 3)
	require.NoError(t, err)
	_, err = e.SubmitGuess(g, "bob", "pilot")
	require.NoError(t, err)
	before := g.Clone()

	for _, who := range []string{"alice", "mallory"} {
		_, err := e.SubmitGuess(g, who, "crane")
		assert.ErrorIs(t, err, ErrNotYourTurn)
		assert.Equal(t, before, g)
	}
}

func TestSubmitGuessFormat(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 3)
	require.NoError(t, err)

	for _, guess := range []string{"", "cran", "cranes", "cr4ne", "cr ne", "crané", "crıne", "ſpeed"} {
		_, err := e.SubmitGuess(g, "bob", guess)
		assert.ErrorIs(t, err, ErrInvalidGuessFormat, guess)
	}
	assert.Empty(t, g.Guesses)
}

func TestSubmitGuessWhileWaiting(t *testing.T) {
	e := newTestEngine()
	g, err := e.CreateWaiting("alice", "bob", 3)
	require.NoError(t, err)

	_, err = e.SubmitGuess(g, "bob", "crane")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitGuessOpenRound(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 3)
	require.NoError(t, err)

	res, err := e.SubmitGuess(g, "bob", "pilot")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.False(t, res.RoundComplete)
	assert.Zero(t, res.PointsAwarded)
	assert.Len(t, res.Feedback, WordLength)
	assert.Equal(t, []string{"PILOT"}, g.Guesses)
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Empty(t, g.History)
}

func TestSubmitGuessCorrectClosesRound(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 3)
	require.NoError(t, err)

	res := solveRound(t, e, g, "CRANE", 2)
	assert.Equal(t, 4, res.PointsAwarded)

	assert.Equal(t, StatusWaiting, g.Status)
	assert.Equal(t, 2, g.CurrentRound)
	assert.Equal(t, Roles{Setter: "bob", Guesser: "alice"}, g.Roles)
	assert.Empty(t, g.TargetWord)
	assert.Empty(t, g.Guesses)
	assert.Equal(t, 4, g.PointsOf("bob"))
	assert.Equal(t, 0, g.PointsOf("alice"))

	require.Len(t, g.History, 1)
	rec := g.History[0]
	assert.Equal(t, 1, rec.Round)
	assert.Equal(t, "alice", rec.WordSetter)
	assert.Equal(t, "bob", rec.Guesser)
	assert.Equal(t, "CRANE", rec.TargetWord)
	assert.Equal(t, []string{"ZZZZZ", "ZZZZZ", "CRANE"}, rec.Guesses)
	assert.Equal(t, 4, rec.PointsAwarded)
	assert.True(t, rec.Solved)
	assert.Equal(t, fixedNow, rec.CompletedAt)
}

func TestSixMissesCloseRoundWithoutPoints(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 2)
	require.NoError(t, err)

	var res GuessResult
	for i := 1; i <= MaxGuesses; i++ {
		res, err = e.SubmitGuess(g, "bob", "pilot")
		require.NoError(t, err)
		assert.Equal(t, i == MaxGuesses, res.RoundComplete, "guess %d", i)
	}
	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.PointsAwarded)
	assert.Equal(t, [2]int{0, 0}, g.Points)
	assert.Equal(t, StatusWaiting, g.Status)
	assert.Equal(t, Roles{Setter: "bob", Guesser: "alice"}, g.Roles)
	require.Len(t, g.History, 1)
	assert.False(t, g.History[0].Solved)
	assert.Len(t, g.History[0].Guesses, MaxGuesses)
}

func TestSixMissesOnFinalRoundCompletes(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 1)
	require.NoError(t, err)

	for i := 0; i < MaxGuesses; i++ {
		_, err = e.SubmitGuess(g, "bob", "pilot")
		require.NoError(t, err)
	}
	assert.Equal(t, StatusCompleted, g.Status)
	require.NotNil(t, g.Outcome)
	assert.True(t, g.Outcome.Draw)
}

func TestThreeRoundGame(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 3)
	require.NoError(t, err)

	solveRound(t, e, g, "CRANE", 3) // bob: 3 points
	solveRound(t, e, g, "GHOST", 0) // alice: 6 points
	solveRound(t, e, g, "APPLE", 1) // bob: 5 points

	assert.Equal(t, StatusCompleted, g.Status)
	assert.Equal(t, 6, g.PointsOf("alice"))
	assert.Equal(t, 8, g.PointsOf("bob"))
	winner, ok := g.Winner()
	assert.True(t, ok)
	assert.Equal(t, "bob", winner)
	require.NotNil(t, g.CompletedAt)
	assert.Equal(t, fixedNow, *g.CompletedAt)

	require.Len(t, g.History, 3)
	for i, rec := range g.History {
		assert.Equal(t, i+1, rec.Round)
	}
	assert.Equal(t, "bob", g.History[1].WordSetter)
	assert.Equal(t, "alice", g.History[1].Guesser)

	_, err = e.SubmitGuess(g, g.Roles.Guesser, "crane")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, e.SetRoundWord(g, g.Roles.Setter, "crane"), ErrInvalidState)
}

func TestTieIsDraw(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 2)
	require.NoError(t, err)

	solveRound(t, e, g, "CRANE", 1)
	solveRound(t, e, g, "GHOST", 1)

	assert.Equal(t, StatusCompleted, g.Status)
	require.NotNil(t, g.Outcome)
	assert.True(t, g.Outcome.Draw)
	_, ok := g.Winner()
	assert.False(t, ok)
}

func TestAbandon(t *testing.T) {
	e := newTestEngine()
	g, err := e.CreateWaiting("alice", "bob", 3)
	require.NoError(t, err)

	assert.ErrorIs(t, e.Abandon(g, "mallory"), ErrNotYourTurn)
	assert.Equal(t, StatusWaiting, g.Status)

	require.NoError(t, e.Abandon(g, "bob"))
	assert.Equal(t, StatusAbandoned, g.Status)
	assert.NotNil(t, g.CompletedAt)
	assert.Nil(t, g.Outcome)

	assert.ErrorIs(t, e.Abandon(g, "alice"), ErrInvalidState)
	assert.ErrorIs(t, e.SetRoundWord(g, "alice", "crane"), ErrInvalidState)
}

func TestCloneIsDeep(t *testing.T) {
	e := newTestEngine()
	g, err := e.Create("alice", "bob", "crane", 1)
	require.NoError(t, err)
	solveRound(t, e, g, "CRANE", 1)

	c := g.Clone()
	assert.Equal(t, g, c)

	c.History[0].Guesses[0] = "XXXXX"
	c.Outcome.Winner = "mallory"
	*c.CompletedAt = time.Time{}
	assert.Equal(t, "ZZZZZ", g.History[0].Guesses[0])
	assert.Equal(t, "bob", g.Outcome.Winner)
	assert.Equal(t, fixedNow, *g.CompletedAt)
}
