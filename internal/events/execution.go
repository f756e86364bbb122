// Package events defines the notification types published on the eventbus
// while a request is served: the HTTP lifecycle, the execution of one
// GraphQL operation, and each field resolution inside it. Subscribers such
// as the tracing layer receive them without the publishers knowing who
// listens.
package events

import "time"

// ExecutionStart is emitted before an operation is handed to the
// interpreter.
type ExecutionStart struct {
	Query         string
	OperationName string
	OperationType string
}

// ExecutionFinish is emitted after the interpreter returns. ErrorCount is
// the number of errors carried in the result, zero for a clean run.
type ExecutionFinish struct {
	Query         string
	OperationName string
	OperationType string
	ErrorCount    int
	Duration      time.Duration
}
