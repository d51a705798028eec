// Package store defines the persistence contracts for classes, their owned
// documents, assignments, materials and study results, and the single
// progression state. Implementations live under internal/platform.
package store
