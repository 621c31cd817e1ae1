// Package errors defines stable error codes for the tool's failure
// modes. The slicing engine itself never errors (absent nodes and
// exceeded depths degrade to partial results); these codes cover the
// surfaces around it: loading graphs, configuration, storage, queries.
package errors

import "fmt"

// Code is a stable, machine-readable error code.
type Code string

const (
	// GraphLoadFailed indicates a graph document or index could not be
	// read or parsed.
	GraphLoadFailed Code = "GRAPH_LOAD_FAILED"
	// GraphInvalid indicates a producer violated the graph contract
	// (dangling edge endpoints, duplicate labels, unknown kinds).
	GraphInvalid Code = "GRAPH_INVALID"
	// NodeNotFound indicates a query named a node label or id that is
	// not in the loaded graph.
	NodeNotFound Code = "NODE_NOT_FOUND"
	// PatternInvalid indicates a call-site pattern could not be used.
	PatternInvalid Code = "PATTERN_INVALID"
	// ConfigInvalid indicates the configuration failed validation.
	ConfigInvalid Code = "CONFIG_INVALID"
	// StoreUnavailable indicates the findings database could not be
	// opened or written.
	StoreUnavailable Code = "STORE_UNAVAILABLE"
	// Internal indicates an unexpected error.
	Internal Code = "INTERNAL_ERROR"
)

// FixAction suggests a remediation for an error.
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// TraceError is an error with a stable code and optional suggestions.
type TraceError struct {
	Code           Code        `json:"code"`
	Message        string      `json:"message"`
	Details        any         `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a TraceError.
func New(code Code, message string, cause error) *TraceError {
	return &TraceError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes[code],
	}
}

// Newf creates a TraceError with a formatted message.
func Newf(code Code, cause error, format string, args ...any) *TraceError {
	return New(code, fmt.Sprintf(format, args...), cause)
}

// Error implements the error interface.
func (e *TraceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *TraceError) Unwrap() error { return e.cause }

// WithDetails attaches structured details and returns the error.
func (e *TraceError) WithDetails(details any) *TraceError {
	e.Details = details
	return e
}

var suggestedFixes = map[Code][]FixAction{
	GraphLoadFailed: {
		{Command: "flowtrace graph validate <path>", Description: "Check the graph document for format errors"},
	},
	NodeNotFound: {
		{Command: "flowtrace graph stats <path>", Description: "List the loaded graph's node labels"},
	},
	StoreUnavailable: {
		{Command: "rm -rf .flowtrace/flowtrace.db", Description: "Remove a corrupt findings database; it is rebuilt on demand"},
	},
}
