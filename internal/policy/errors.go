package policy

import "errors"

var (
	ErrHookNotDefined    = errors.New("policy does not export onSetCookie")
	ErrInvalidReturnType = errors.New("onSetCookie must return a string, null or undefined")
	ErrInvalidMatches    = errors.New("matches must be an array of regular expressions")
	ErrTimeout           = errors.New("policy script timed out")
)
