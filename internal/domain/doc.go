// Package domain contains the core study entities (classes, documents,
// assignments, generated materials, study results) and the progression
// value types. Constructors enforce the entity invariants; nothing in this
// package performs I/O.
package domain
