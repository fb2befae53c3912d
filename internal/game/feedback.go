// internal/game/feedback.go
//
// Letter feedback for one guess against one target, using the two-pass
// Wordle algorithm:
//
//   Pass 1: mark exact matches CORRECT and consume those target letters.
//   Pass 2: for every other guess letter, scan the target left to right for
//           an unconsumed equal letter; consume it and mark PRESENT, or mark
//           ABSENT when none is left.
//
// Exact matches must be removed first, otherwise a repeated guess letter can
// claim a target letter that a later exact match needs.

package game

// Evaluate returns one LetterFeedback per guess letter. Both words are
// expected to be uppercase and of equal length; callers validate that.
func Evaluate(guess, target string) []LetterFeedback {
	n := len(guess)
	out := make([]LetterFeedback, n)
	consumed := make([]bool, len(target))

	for i := 0; i < n; i++ {
		out[i] = LetterFeedback{Letter: guess[i : i+1], Status: LetterAbsent}
		if i < len(target) && guess[i] == target[i] {
			out[i].Status = LetterCorrect
			consumed[i] = true
		}
	}

	for i := 0; i < n; i++ {
		if out[i].Status == LetterCorrect {
			continue
		}
		for j := 0; j < len(target); j++ {
			if !consumed[j] && target[j] == guess[i] {
				out[i].Status = LetterPresent
				consumed[j] = true
				break
			}
		}
	}
	return out
}

// AllCorrect reports true if every letter is CORRECT.
func AllCorrect(fb []LetterFeedback) bool {
	if len(fb) == 0 {
		return false
	}
	for _, f := range fb {
		if f.Status != LetterCorrect {
			return false
		}
	}
	return true
}
