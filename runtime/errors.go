package runtime

import "fmt"

// ErrorKind classifies evaluation errors.
type ErrorKind uint8

const (
	KindReference ErrorKind = iota + 1
	KindType
	KindRange
	KindThrown
)

func (k ErrorKind) String() string {
	switch k {
	case KindReference:
		return "ReferenceError"
	case KindType:
		return "TypeError"
	case KindRange:
		return "RangeError"
	case KindThrown:
		return "Uncaught"
	default:
		return "Error"
	}
}

// Error is an evaluation error. For KindThrown, Value holds the thrown value
// and Message its rendering. Line and Column locate the innermost statement
// that raised it; they are zero until the interpreter stamps them.
type Error struct {
	Kind    ErrorKind
	Message string
	Value   Value

	Line   int
	Column int
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is matches errors of the same kind, so errors.Is(err, ErrType) holds for
// every TypeError.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrReference = &Error{Kind: KindReference}
	ErrType      = &Error{Kind: KindType}
	ErrRange     = &Error{Kind: KindRange}
	ErrThrown    = &Error{Kind: KindThrown}
)

func NewReferenceError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindReference, Message: fmt.Sprintf(format, args...)}
}

func NewTypeError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindType, Message: fmt.Sprintf(format, args...)}
}

func NewRangeError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindRange, Message: fmt.Sprintf(format, args...)}
}

// NewThrown wraps a value raised by a throw statement.
func NewThrown(v Value, rendered string) *Error {
	return &Error{Kind: KindThrown, Message: rendered, Value: v}
}
