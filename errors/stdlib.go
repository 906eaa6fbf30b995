package errors

import (
	stderrors "errors"
)

// Is is a convenience alias for the standard library's errors.Is, so callers
// don't need to import both packages.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is a convenience alias for the standard library's errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
