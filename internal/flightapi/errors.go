package flightapi

import "errors"

var (
	ErrTransient    = errors.New("flight api temporarily unavailable")
	ErrRateLimited  = errors.New("flight api rate limited")
	ErrAuthRequired = errors.New("flight api authentication failed")
)
