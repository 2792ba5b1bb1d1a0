package graphql

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Location points at the part of the query an error refers to.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is one entry of the GraphQL errors array.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// TransportError means no usable GraphQL response was received: the
// connection failed, timed out, returned a non-2xx status or a body that is
// not a GraphQL response.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("graphql transport: status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("graphql transport: status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("graphql transport: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError means the service answered but reported errors instead
// of (or alongside) data.
type ApplicationError struct {
	Errors []Error
	Data   json.RawMessage
}

func (e *ApplicationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Contains reports whether any error message contains substr.
func (e *ApplicationError) Contains(substr string) bool {
	for _, ge := range e.Errors {
		if strings.Contains(ge.Message, substr) {
			return true
		}
	}
	return false
}
