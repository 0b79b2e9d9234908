package access

import "errors"

var (
	ErrInvalidUID        = errors.New("invalid uid (valid lengths: 4 or 7 bytes)")
	ErrEmptyTable        = errors.New("lockout table is empty")
	ErrTableNotMonotonic = errors.New("lockout table must be non-decreasing")
	ErrNegativeDuration  = errors.New("duration must not be negative")
)
