package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLine is returned when a line has no identifier.
	ErrEmptyLine = errors.New("empty line")

	// ErrMissingCategory is returned under FailFast when a line has no category field.
	ErrMissingCategory = errors.New("missing category")

	// ErrInvalidFeature is returned under FailFast for a feature token without a
	// key:value separator or with an unparseable value.
	ErrInvalidFeature = errors.New("invalid feature")
)

// ParseError describes a parse failure at a specific input line.
//
// The original underlying error can be accessed via errors.Unwrap.
type ParseError struct {
	Line  int
	Token string
	cause error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.cause)
	}
	return fmt.Sprintf("line %d: token %q: %v", e.Line, e.Token, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }
