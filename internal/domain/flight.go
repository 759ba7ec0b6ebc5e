package domain

import "time"

type Airline struct {
	Name string `json:"name"`
}

type FlightNumber struct {
	IATA   string `json:"iata"`
	Number string `json:"number"`
}

type Endpoint struct {
	IATA      string    `json:"iata"`
	Scheduled time.Time `json:"scheduled"`
}

// FlightRecord mirrors the upstream API shape. Price is nil until a real or
// synthesized fare is attached.
type FlightRecord struct {
	Airline   Airline      `json:"airline"`
	Flight    FlightNumber `json:"flight"`
	Departure Endpoint     `json:"departure"`
	Arrival   Endpoint     `json:"arrival"`
	Price     *int         `json:"price,omitempty"`
}

// Renderable reports whether the record carries the fields every results card needs.
func (f FlightRecord) Renderable() bool {
	return f.Departure.IATA != "" && f.Arrival.IATA != "" && !f.Departure.Scheduled.IsZero()
}

// WithPrice returns a copy of the record priced at amount.
func (f FlightRecord) WithPrice(amount int) FlightRecord {
	f.Price = &amount
	return f
}

// Clone returns a copy that shares no pointers with f.
func (f FlightRecord) Clone() FlightRecord {
	if f.Price != nil {
		return f.WithPrice(*f.Price)
	}
	return f
}

func CloneFlights(flights []FlightRecord) []FlightRecord {
	if flights == nil {
		return nil
	}
	out := make([]FlightRecord, len(flights))
	for i, f := range flights {
		out[i] = f.Clone()
	}
	return out
}
