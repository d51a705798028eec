// Package events carries notifications between the study service and the
// components that react to them.
//
// The service emits an Event after each state change (a document upload, a
// finished summary, a new material, a completed session, a milestone). The
// background task runner listens for uploads that need a summary, and the
// optional Redis notifier forwards every event to subscribers. Neither side
// knows about the other.
package events
