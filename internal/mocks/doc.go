// Package mocks provides function-field test doubles for the generation and
// synthesis boundaries, shared by package and command tests.
//
// Each mock records its calls and returns a configurable default when no
// function is set.
package mocks
