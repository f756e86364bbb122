package interpreter

import (
	exec "github.com/graphmill/graphmill/internal/exec"
)

// GraphQLError is one located error in a response.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       exec.Path      `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Result is the outcome of executing one operation. Data is nil when
// execution failed before the walk started or when a non-null failure
// propagated all the way to the root.
type Result struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
