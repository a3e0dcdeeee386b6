package errkind

import "errors"

// Error is a sentinel that also matches the broader kind it belongs to, so
// callers can branch on either the specific error or its kind with errors.Is.
type Error struct {
	msg  string
	kind error
}

func New(kind error, msg string) *Error {
	return &Error{msg: msg, kind: kind}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Kind() error {
	return e.kind
}

func (e *Error) Is(target error) bool {
	if e.kind == nil {
		return false
	}
	return target == e.kind || errors.Is(e.kind, target)
}
