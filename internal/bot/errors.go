package bot

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a command failure.
type ErrorKind string

const (
	// ErrorUser is a failure with a message meant for the caller.
	ErrorUser ErrorKind = "USER_ERROR"

	// ErrorUnknown is a failure the caller only sees as "An error has occurred".
	ErrorUnknown ErrorKind = "UNKNOWN_ERROR"

	// ErrorSyntax means the options did not match the command signature.
	ErrorSyntax ErrorKind = "SYNTAX_ERROR"

	// ErrorUnknownCommand means no command has the requested name.
	ErrorUnknownCommand ErrorKind = "UNKNOWN_COMMAND"
)

// CommandError is returned by commands and by Manager dispatch.
type CommandError struct {
	Kind ErrorKind

	// Message is shown to the caller. Empty means the generic text.
	Message string

	// Detail is logged but never shown.
	Detail string

	Err error
}

func (e *CommandError) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UserError returns an error whose message is shown to the caller.
func UserError(format string, args ...any) *CommandError {
	return &CommandError{Kind: ErrorUser, Message: fmt.Sprintf(format, args...)}
}

// InternalError returns an error shown generically and logged with detail.
func InternalError(detail string, err error) *CommandError {
	return &CommandError{Kind: ErrorUnknown, Detail: detail, Err: err}
}

// SyntaxError returns an error that renders the command's usage.
func SyntaxError(detail string) *CommandError {
	return &CommandError{Kind: ErrorSyntax, Detail: detail}
}

// AsCommandError converts any error into a *CommandError. Errors that are not
// already command errors become ErrorUnknown.
func AsCommandError(err error) *CommandError {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce
	}
	return &CommandError{Kind: ErrorUnknown, Err: err}
}

// IsSyntaxError reports whether err is a syntax error.
func IsSyntaxError(err error) bool {
	return hasKind(err, ErrorSyntax)
}

// IsUnknownCommand reports whether err is an unknown-command error.
func IsUnknownCommand(err error) bool {
	return hasKind(err, ErrorUnknownCommand)
}

func hasKind(err error, kind ErrorKind) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Kind == kind
}
