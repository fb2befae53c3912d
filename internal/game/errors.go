package game

import "errors"

// Validation failures. They are never retryable and are always returned
// before the game is touched.
var (
	ErrInvalidState       = errors.New("invalid state")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidWord        = errors.New("invalid word")
	ErrInvalidGuessFormat = errors.New("invalid guess format")
	ErrInvalidConfig      = errors.New("invalid config")
)
