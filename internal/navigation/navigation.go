// Package navigation names the routes the results page can leave through.
package navigation

import (
	"context"
	"errors"
)

type Route string

const (
	Home    Route = "/"
	Booking Route = "/book"
)

var (
	ErrUnknownRoute   = errors.New("unknown route")
	ErrInvalidPayload = errors.New("invalid navigation payload")
)

// Navigator moves the user to route carrying payload and returns the location
// the client should be sent to.
type Navigator interface {
	Navigate(ctx context.Context, route Route, payload any) (string, error)
}
