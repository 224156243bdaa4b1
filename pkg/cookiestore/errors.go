package cookiestore

import "errors"

var (
	// ErrInvalidArgument is returned when a cookie list is absent or the
	// target URL cannot address a cookie scope.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClosed is returned by a persistent jar after Close.
	ErrClosed = errors.New("cookie jar closed")
)
