package engine

import "fmt"

// Code classifies engine errors.
type Code int

const (
	CodeUnknown Code = iota
	// CodeConfiguration marks a board or round schedule that cannot make a game.
	CodeConfiguration
	// CodeInvalidPhase marks an operation called outside the phase it belongs to.
	CodeInvalidPhase
)

func (c Code) String() string {
	switch c {
	case CodeConfiguration:
		return "CONFIGURATION"
	case CodeInvalidPhase:
		return "INVALID_PHASE"
	default:
		return "UNKNOWN"
	}
}

// Error is returned for caller misuse. End-user input mistakes never produce
// one; those are resolved by substitution.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrConfiguration = &Error{Code: CodeConfiguration, Message: "configuration error"}
	ErrInvalidPhase  = &Error{Code: CodeInvalidPhase, Message: "invalid phase"}
)

func configErrorf(format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Message: "configuration: " + fmt.Sprintf(format, args...)}
}

func phaseError(op string, phase Phase) *Error {
	return &Error{Code: CodeInvalidPhase, Message: fmt.Sprintf("%s: not allowed in phase %s", op, phase)}
}

func phaseErrorf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPhase, Message: fmt.Sprintf(format, args...)}
}
