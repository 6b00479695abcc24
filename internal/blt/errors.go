package blt

import "fmt"

// ErrorKind classifies the ways an encode or decode session can fail.
type ErrorKind int

const (
	// BadMagic means the first three bytes of the stream were not "BLT".
	BadMagic ErrorKind = iota
	// UnsupportedVersion means the file's version exceeds the library's.
	UnsupportedVersion
	// MalformedInput means the stream was truncated, an overlong varint
	// was seen, or an unknown template/encoding-kind tag was read.
	MalformedInput
	// OutOfBoundsIndex means a symbol or template index exceeded its table.
	OutOfBoundsIndex
	// ForwardReference means a node-table reference indexed a position
	// that has not been populated yet.
	ForwardReference
	// UnsupportedLiteral means no encoder is registered for a literal's
	// runtime type, or no decoder for a literal run's encoding kind.
	UnsupportedLiteral
)

func (k ErrorKind) String() string {
	switch k {
	case BadMagic:
		return "BadMagic"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case MalformedInput:
		return "MalformedInput"
	case OutOfBoundsIndex:
		return "OutOfBoundsIndex"
	case ForwardReference:
		return "ForwardReference"
	case UnsupportedLiteral:
		return "UnsupportedLiteral"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by Encode and Decode. All failures in
// decode are fatal for the file; none are retried.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blt: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("blt: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapError(kind ErrorKind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the ErrorKind of err, if err (or something it wraps) is
// a *Error. The second return value is false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return 0, false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
