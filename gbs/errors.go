package gbs

import (
	"errors"
	"fmt"
)

// Kinds of fatal format errors. Match them with errors.Is.
var (
	ErrTruncated    = errors.New("file too small to contain a GBS header")
	ErrBadSignature = errors.New("invalid GBS signature")
	ErrInvalidTimer = errors.New("invalid timer configuration")
)

// FormatError is returned for any input that cannot be analysed at all.
// Kind is one of the Err* values above.
type FormatError struct {
	Kind   error
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

func formatErrorf(kind error, format string, args ...any) error {
	return &FormatError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Warning is a non-fatal problem noticed while decoding.
type Warning struct {
	Offset  int // Byte offset in the file the warning refers to.
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset 0x%02x: %s", w.Offset, w.Message)
}
