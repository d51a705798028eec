// Package progression implements XP accumulation, level derivation and
// milestone unlocking. Every function takes the ProgressState as a value and
// returns the updated value; the caller owns the live instance.
package progression
