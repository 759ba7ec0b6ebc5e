package fixtures

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/skyresults/config"
	"github.com/Domenick1991/skyresults/internal/domain"
)

//go:embed data/flights.json
var embeddedFlights []byte

// Lister is the Postgres-backed fixture source.
type Lister interface {
	List(ctx context.Context) ([]domain.FlightRecord, error)
}

// Set is the fixture dataset, loaded once and read-only afterwards.
type Set struct {
	flights []domain.FlightRecord
}

func NewSet(flights []domain.FlightRecord) *Set {
	return &Set{flights: domain.CloneFlights(flights)}
}

// Flights returns a copy of the dataset.
func (s *Set) Flights() []domain.FlightRecord {
	if s == nil {
		return nil
	}
	return domain.CloneFlights(s.flights)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.flights)
}

func Embedded() (*Set, error) {
	var flights []domain.FlightRecord
	if err := json.Unmarshal(embeddedFlights, &flights); err != nil {
		return nil, fmt.Errorf("decode embedded fixtures: %w", err)
	}
	return NewSet(flights), nil
}

func Load(ctx context.Context, source string, repo Lister) (*Set, error) {
	switch source {
	case config.FixturesEmbedded, "":
		return Embedded()
	case config.FixturesPostgres:
		if repo == nil {
			return nil, fmt.Errorf("fixtures source %q requires a repository", source)
		}
		flights, err := repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("load fixtures from postgres: %w", err)
		}
		return NewSet(flights), nil
	default:
		return nil, fmt.Errorf("unknown fixtures source %q", source)
	}
}
