// Package session implements the interactive quiz and flashcard state
// machines. Sessions are pure in-memory values: they never perform I/O and
// are discarded once their Outcome has been consumed.
package session
