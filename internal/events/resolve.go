package events

import "time"

// ResolveStart is emitted before a field resolution. For deferred forcing,
// Lazy is true, Field carries the registered accessor name and ObjectType
// is empty.
type ResolveStart struct {
	ObjectType string
	Field      string
	Path       string
	Lazy       bool
}

// ResolveFinish is emitted after a field resolution or forcing completes.
type ResolveFinish struct {
	ObjectType string
	Field      string
	Path       string
	Lazy       bool
	Err        error
	Duration   time.Duration
}
