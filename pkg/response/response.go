package response

import (
	"errors"
	"fmt"
)

type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// WithDetail keeps the status code of e and appends detail to its message.
// errors.Is(result, e) still holds.
func (e *Error) WithDetail(detail string) error {
	return &Error{Code: e.Code, Err: fmt.Errorf("%w: %s", e, detail)}
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// Detail wraps a sentinel created by NewError. Errors that are not *Error are wrapped with fmt.
func Detail(sentinel error, detail string) error {
	var e *Error
	if errors.As(sentinel, &e) {
		return e.WithDetail(detail)
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}
