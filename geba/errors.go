package geba

import (
	"errors"
	"fmt"
)

var (
	// Returned when the text of a field cannot be converted to the field type
	ErrFieldFormat = errors.New("invalid field format")
	// Returned when the variable code of an observation line is not in VAR_NAMES
	ErrUnknownVariable = errors.New("unknown variable code")
)

// ParseError reports the first field of a file that could not be decoded.
// A single ParseError aborts the whole load, no partial table is returned.
type ParseError struct {
	Line  int    // 1-based line number in the file
	Field string // Name of the column the field belongs to
	Text  string // Text sliced from the line
	Err   error
}

func newParseError(lineNum int, field, text string, kind, cause error) *ParseError {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	return &ParseError{Line: lineNum + 1, Field: field, Text: text, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, field '%s' ('%s'): %s", e.Line, e.Field, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
