package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeIO indicates a filesystem failure on the snapshot or WAL.
	ErrCodeIO ErrorCode = "IO_ERROR"

	// ErrCodeParse indicates snapshot or WAL content that is not a valid
	// document, or a WAL that cannot be replayed onto its snapshot.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeTypePath indicates a write through a segment holding a non-object.
	ErrCodeTypePath ErrorCode = "TYPE_PATH_ERROR"

	// ErrCodeInvalidPath indicates an empty or unparseable path.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodeInvalidValue indicates a value that cannot be encoded: NaN, ±Inf
	// or invalid UTF-8.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"
)

// ErrClosed is wrapped by errors returned from Set after Close.
var ErrClosed = errors.New("store is closed")

// Error is the error type returned by every store operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the document path involved, if any.
	Path Path

	// File is the on-disk file involved, if any.
	File string

	// Line is the 1-based WAL line number for replay errors.
	Line int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.File != "" && e.Line > 0:
		msg += fmt.Sprintf(" (%s:%d)", e.File, e.Line)
	case e.File != "":
		msg += fmt.Sprintf(" (%s)", e.File)
	}
	if e.Path != nil {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsIOError reports whether err is a filesystem failure.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeIO)
}

// IsParseError reports whether err is a snapshot or WAL parse failure.
func IsParseError(err error) bool {
	return hasCode(err, ErrCodeParse)
}

// IsTypePathError reports whether err is a write through a non-object.
// A replay conflict is reported as a parse error even though it wraps one of these.
func IsTypePathError(err error) bool {
	return hasCode(err, ErrCodeTypePath)
}

// IsInvalidPath reports whether err is an empty or malformed path.
func IsInvalidPath(err error) bool {
	return hasCode(err, ErrCodeInvalidPath)
}

func ioError(message, file string, err error) *Error {
	return &Error{Code: ErrCodeIO, Message: message, File: file, Err: err}
}

func parseError(message, file string, line int, err error) *Error {
	return &Error{Code: ErrCodeParse, Message: message, File: file, Line: line, Err: err}
}
