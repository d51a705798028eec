// Package service orchestrates the study library: it owns the single mutex
// that serializes store and progression mutations, runs AI generation outside
// that lock, drives study sessions, and emits events for background work and
// notifications.
package service
