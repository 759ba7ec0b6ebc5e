package domain

import "time"

// Handoff is the context carried from the results page to the booking route.
type Handoff struct {
	Token     string       `json:"token"`
	Flight    FlightRecord `json:"flight"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Selection is the recorded form of a flight_selected event.
type Selection struct {
	ID          int64
	Token       string
	Airline     string
	FlightIATA  string
	Origin      string
	Destination string
	DepartureAt time.Time
	Price       int
	SelectedAt  time.Time
	RecordedAt  time.Time
}
