// Package errors defines the typed errors the FAQ search subsystem
// reports. Callers match with errors.As; every type unwraps to its
// underlying cause.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging and analytics.
type ErrorType string

const (
	ErrorTypeCorpus ErrorType = "corpus"
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeSearch ErrorType = "search"

	ErrorTypeInternal ErrorType = "internal"
)

// CorpusError represents a failure loading or validating corpus content.
type CorpusError struct {
	Type       ErrorType
	Path       string
	QuestionID string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewCorpusError creates a new corpus error with context.
func NewCorpusError(op string, err error) *CorpusError {
	return &CorpusError{
		Type:       ErrorTypeCorpus,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPath adds the corpus file the error came from.
func (e *CorpusError) WithPath(path string) *CorpusError {
	e.Path = path
	return e
}

// WithQuestion adds the offending question ID.
func (e *CorpusError) WithQuestion(id string) *CorpusError {
	e.QuestionID = id
	return e
}

// Error implements the error interface
func (e *CorpusError) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("corpus %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
	case e.QuestionID != "":
		return fmt.Sprintf("corpus %s failed for question %s: %v", e.Operation, e.QuestionID, e.Underlying)
	}
	return fmt.Sprintf("corpus %s failed: %v", e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *CorpusError) Unwrap() error {
	return e.Underlying
}

// SearchError represents a search operation error
type SearchError struct {
	Type       ErrorType
	Query      string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(query string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for query %q: %v", e.Query, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Type       ErrorType
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Type:       ErrorTypeConfig,
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError aggregates several validation problems into one error so a
// corpus check can report everything wrong at once.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries. Returns
// nil when nothing remains.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
