package session

import "errors"

var (
	// ErrSessionFinished is returned for any input after the session is scored.
	ErrSessionFinished = errors.New("session already finished")

	// ErrNotRevealed is returned when a card is marked before its back was shown.
	ErrNotRevealed = errors.New("card back has not been revealed")
)
