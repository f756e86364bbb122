package schema

import (
	"errors"
	"fmt"
)

// ExecutionError is raised by a resolver to report a field-level failure
// while letting the rest of the operation continue. When a deferred value
// fails with an ExecutionError, the error itself becomes the resolved value
// and is recorded at the position that scheduled it.
type ExecutionError struct {
	Message    string
	Extensions map[string]any
}

func (e *ExecutionError) Error() string { return e.Message }

// UnauthorizedError signals that the requester may not see the resolved
// object. Execution treats it like an ExecutionError. TypeName and
// FieldName identify the position that denied access when the raiser
// knows it.
type UnauthorizedError struct {
	TypeName  string
	FieldName string
	Message   string
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.TypeName != "" && e.FieldName != "" {
		return fmt.Sprintf("not authorized to access %s.%s", e.TypeName, e.FieldName)
	}
	return "unauthorized"
}

// IsResolutionError reports whether err is one of the error kinds that
// execution converts into response errors instead of aborting the request.
func IsResolutionError(err error) bool {
	var execErr *ExecutionError
	var unauthErr *UnauthorizedError
	return errors.As(err, &execErr) || errors.As(err, &unauthErr)
}
