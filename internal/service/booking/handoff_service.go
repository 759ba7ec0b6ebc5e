package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/Domenick1991/skyresults/internal/kafka"
	"github.com/Domenick1991/skyresults/internal/metrics"
	"github.com/Domenick1991/skyresults/internal/navigation"
	"github.com/google/uuid"
)

var ErrHandoffNotFound = errors.New("booking hand-off not found or expired")

type HandoffUseCase interface {
	navigation.Navigator
	Get(ctx context.Context, token string) (*domain.Handoff, error)
}

type HandoffStore interface {
	SaveHandoff(ctx context.Context, handoff *domain.Handoff, ttl time.Duration) error
	LoadHandoff(ctx context.Context, token string) (*domain.Handoff, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type HandoffService struct {
	store    HandoffStore
	producer Producer
	topic    string
	ttl      time.Duration
	now      func() time.Time
}

type HandoffServiceOption func(*HandoffService)

func WithClock(now func() time.Time) HandoffServiceOption {
	return func(s *HandoffService) {
		s.now = now
	}
}

// NewHandoffService builds the booking navigator. A nil producer disables
// selection events.
func NewHandoffService(store HandoffStore, producer Producer, topic string, ttl time.Duration, opts ...HandoffServiceOption) *HandoffService {
	service := &HandoffService{
		store:    store,
		producer: producer,
		topic:    topic,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *HandoffService) Navigate(ctx context.Context, route navigation.Route, payload any) (string, error) {
	switch route {
	case navigation.Home:
		return string(navigation.Home), nil
	case navigation.Booking:
		flight, err := flightPayload(payload)
		if err != nil {
			metrics.Handoffs.WithLabelValues("rejected").Inc()
			return "", err
		}
		handoff, err := s.handOff(ctx, flight)
		if err != nil {
			metrics.Handoffs.WithLabelValues("failed").Inc()
			return "", err
		}
		metrics.Handoffs.WithLabelValues("stored").Inc()
		return fmt.Sprintf("%s/%s", navigation.Booking, handoff.Token), nil
	default:
		return "", fmt.Errorf("%w: %s", navigation.ErrUnknownRoute, route)
	}
}

func (s *HandoffService) Get(ctx context.Context, token string) (*domain.Handoff, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrHandoffNotFound
	}
	handoff, err := s.store.LoadHandoff(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load hand-off: %w", err)
	}
	if handoff == nil || !s.now().Before(handoff.ExpiresAt) {
		return nil, ErrHandoffNotFound
	}
	return handoff, nil
}

func (s *HandoffService) handOff(ctx context.Context, flight domain.FlightRecord) (*domain.Handoff, error) {
	now := s.now()
	handoff := &domain.Handoff{
		Token:     uuid.NewString(),
		Flight:    flight.Clone(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.SaveHandoff(ctx, handoff, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store hand-off: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.Publish(ctx, s.topic, handoff.Token, selectionEvent(handoff)); err != nil {
			slog.WarnContext(ctx, "failed to publish selection event", "token", handoff.Token, "error", err)
		}
	}
	return handoff, nil
}

func flightPayload(payload any) (domain.FlightRecord, error) {
	var flight domain.FlightRecord
	switch p := payload.(type) {
	case domain.FlightRecord:
		flight = p
	case *domain.FlightRecord:
		if p == nil {
			return flight, navigation.ErrInvalidPayload
		}
		flight = *p
	default:
		return flight, fmt.Errorf("%w: %T", navigation.ErrInvalidPayload, payload)
	}
	if !flight.Renderable() {
		return flight, fmt.Errorf("%w: flight is missing route or schedule", navigation.ErrInvalidPayload)
	}
	if flight.Price == nil {
		return flight, fmt.Errorf("%w: flight has no price", navigation.ErrInvalidPayload)
	}
	return flight, nil
}

func selectionEvent(h *domain.Handoff) kafka.SelectionEvent {
	return kafka.SelectionEvent{
		Type:        kafka.EventFlightSelected,
		Token:       h.Token,
		Airline:     h.Flight.Airline.Name,
		FlightIATA:  h.Flight.Flight.IATA,
		Origin:      h.Flight.Departure.IATA,
		Destination: h.Flight.Arrival.IATA,
		DepartureAt: h.Flight.Departure.Scheduled,
		Price:       *h.Flight.Price,
		SelectedAt:  h.CreatedAt,
	}
}

var _ HandoffUseCase = (*HandoffService)(nil)
