package fallback

import (
	"strings"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
)

// Filter returns the fixtures flying origin to destination on the criteria's
// calendar day in loc. Unpriced matches get a fare from pricer. The input
// slice is not modified.
func Filter(c domain.SearchCriteria, fixtures []domain.FlightRecord, loc *time.Location, pricer Pricer) []domain.FlightRecord {
	if loc == nil {
		loc = time.UTC
	}
	day := c.Date.In(loc).Format(domain.DateLayout)

	matched := make([]domain.FlightRecord, 0)
	for _, f := range fixtures {
		if !strings.EqualFold(f.Departure.IATA, c.Origin) || !strings.EqualFold(f.Arrival.IATA, c.Destination) {
			continue
		}
		if f.Departure.Scheduled.IsZero() || f.Departure.Scheduled.In(loc).Format(domain.DateLayout) != day {
			continue
		}
		matched = append(matched, Price(f, pricer))
	}
	return matched
}

// Price returns a copy of f that carries a fare, keeping an existing one.
func Price(f domain.FlightRecord, pricer Pricer) domain.FlightRecord {
	if f.Price != nil {
		return f.Clone()
	}
	return f.WithPrice(pricer.Price())
}
