package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/Domenick1991/skyresults/internal/fallback"
	"github.com/Domenick1991/skyresults/internal/fixtures"
	"github.com/Domenick1991/skyresults/internal/metrics"
)

var (
	ErrFlightDataUnavailable = errors.New("flight data unavailable")
	ErrIncompleteCriteria    = errors.New("origin, destination and date are required")
)

type Source string

const (
	SourceAPI      Source = "api"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

type SearchUseCase interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) (*Result, error)
}

type FlightQuerier interface {
	Query(ctx context.Context, origin, destination string) ([]domain.FlightRecord, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, key string) ([]domain.FlightRecord, error)
	SetFlights(ctx context.Context, key string, flights []domain.FlightRecord) error
}

type Result struct {
	Criteria domain.SearchCriteria
	Flights  []domain.FlightRecord
	Source   Source
	// UpstreamErr is the masked query failure behind a fallback result.
	UpstreamErr error
}

type SearchService struct {
	querier    FlightQuerier
	cache      FlightCache
	fixtures   *fixtures.Set
	pricer     fallback.Pricer
	loc        *time.Location
	maskErrors bool
}

type SearchServiceOption func(*SearchService)

func WithCache(cache FlightCache) SearchServiceOption {
	return func(s *SearchService) {
		s.cache = cache
	}
}

func WithPricer(pricer fallback.Pricer) SearchServiceOption {
	return func(s *SearchService) {
		s.pricer = pricer
	}
}

// WithErrorMasking sets the policy for query failures. Masked failures are
// replaced by fixture results; unmasked ones return ErrFlightDataUnavailable.
func WithErrorMasking(mask bool) SearchServiceOption {
	return func(s *SearchService) {
		s.maskErrors = mask
	}
}

func NewSearchService(querier FlightQuerier, set *fixtures.Set, loc *time.Location, opts ...SearchServiceOption) *SearchService {
	service := &SearchService{
		querier:    querier,
		fixtures:   set,
		pricer:     fallback.NewRandomPricer(fallback.DefaultMinPrice, fallback.DefaultMaxPrice),
		loc:        loc,
		maskErrors: true,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *SearchService) MasksErrors() bool {
	return s.maskErrors
}

func (s *SearchService) Search(ctx context.Context, criteria domain.SearchCriteria) (*Result, error) {
	if !criteria.Complete() {
		return nil, ErrIncompleteCriteria
	}
	key := criteria.Key()

	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "flight cache read failed", "key", key, "error", err)
		} else if len(cached) > 0 {
			return s.finish(&Result{Criteria: criteria, Flights: cached, Source: SourceCache}), nil
		}
	}

	flights, err := s.querier.Query(ctx, criteria.Origin, criteria.Destination)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		metrics.UpstreamFailures.Inc()
		if !s.maskErrors {
			return nil, fmt.Errorf("%w: %w", ErrFlightDataUnavailable, err)
		}
		slog.WarnContext(ctx, "flight api failed, falling back to fixtures", "route", key, "error", err)
		return s.finish(s.fallback(criteria, err)), nil
	}

	usable := s.prepare(flights)
	if len(usable) == 0 {
		slog.WarnContext(ctx, "flight api returned no usable flights, falling back to fixtures", "route", key, "received", len(flights))
		return s.finish(s.fallback(criteria, nil)), nil
	}

	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, key, usable); err != nil {
			slog.WarnContext(ctx, "flight cache write failed", "key", key, "error", err)
		}
	}
	return s.finish(&Result{Criteria: criteria, Flights: usable, Source: SourceAPI}), nil
}

// prepare drops records a card cannot show and prices the rest.
func (s *SearchService) prepare(flights []domain.FlightRecord) []domain.FlightRecord {
	usable := make([]domain.FlightRecord, 0, len(flights))
	for _, f := range flights {
		if !f.Renderable() {
			continue
		}
		usable = append(usable, fallback.Price(f, s.pricer))
	}
	return usable
}

func (s *SearchService) fallback(criteria domain.SearchCriteria, upstreamErr error) *Result {
	return &Result{
		Criteria:    criteria,
		Flights:     fallback.Filter(criteria, s.fixtures.Flights(), s.loc, s.pricer),
		Source:      SourceFallback,
		UpstreamErr: upstreamErr,
	}
}

func (s *SearchService) finish(result *Result) *Result {
	metrics.Searches.WithLabelValues(string(result.Source)).Inc()
	return result
}

var _ SearchUseCase = (*SearchService)(nil)
