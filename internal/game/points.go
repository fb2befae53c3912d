package game

// Points maps the number of guesses used to solve a round into a score:
// 1 guess → 6 points … 6 guesses → 1 point. Counts outside [1, MaxGuesses]
// score 0.
func Points(guessCount int) int {
	if guessCount < 1 || guessCount > MaxGuesses {
		return 0
	}
	return MaxGuesses + 1 - guessCount
}
