// Package view holds the state behind the flight results page. A ResultView
// reacts to criteria changes by loading flights in the background and keeps
// only the outcome of the latest load.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/Domenick1991/skyresults/internal/format"
	"github.com/Domenick1991/skyresults/internal/navigation"
	"github.com/Domenick1991/skyresults/internal/service/search"
	"github.com/google/uuid"
)

type State string

const (
	StateNoSearchData State = "no_search_data"
	StateLoading      State = "loading"
	StateError        State = "error"
	StateEmpty        State = "empty"
	StateResults      State = "results"
)

var (
	ErrNoSuchFlight = errors.New("no flight at that position")
	ErrClosed       = errors.New("result view closed")

	// ErrResultsExpired means a stored result set is unknown or has expired.
	ErrResultsExpired = errors.New("search results expired")
)

// ResultStore keeps rendered result sets so a later request can book from
// exactly the list that was shown.
type ResultStore interface {
	SaveResults(ctx context.Context, id string, flights []domain.FlightRecord, ttl time.Duration) error
	LoadResults(ctx context.Context, id string) ([]domain.FlightRecord, error)
}

// Card is one flight as the results page shows it.
type Card struct {
	Index        int                 `json:"index"`
	Airline      string              `json:"airline"`
	Route        string              `json:"route"`
	Departure    string              `json:"departure"`
	Arrival      string              `json:"arrival"`
	FlightNumber string              `json:"flight_number"`
	Price        string              `json:"price"`
	Flight       domain.FlightRecord `json:"flight"`
}

type Snapshot struct {
	State    State                 `json:"state"`
	Criteria domain.SearchCriteria `json:"-"`
	Source   search.Source         `json:"source,omitempty"`
	Cards    []Card                `json:"cards"`
	// ResultID names the stored result set; empty when the list was not stored.
	ResultID string                `json:"result_id,omitempty"`
	Err      error                 `json:"-"`
}

// Message is the text the page shows for the error state.
func (s Snapshot) Message() string {
	if s.Err == nil {
		return ""
	}
	return "Flight data is unavailable right now. Please try again."
}

type ResultView struct {
	searcher search.SearchUseCase
	nav      navigation.Navigator
	loc      *time.Location
	store    ResultStore
	storeTTL time.Duration

	mu       sync.Mutex
	gen      uint64
	criteria *domain.SearchCriteria
	cancel   context.CancelFunc
	done     chan struct{}
	snap     Snapshot
	flights  []domain.FlightRecord
	subs     map[chan struct{}]struct{}
	closed   bool
}

type Option func(*ResultView)

// WithLocation sets the timezone card times are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(v *ResultView) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// WithResultStore stores every result list the view shows for ttl.
func WithResultStore(store ResultStore, ttl time.Duration) Option {
	return func(v *ResultView) {
		v.store = store
		v.storeTTL = ttl
	}
}

func New(searcher search.SearchUseCase, nav navigation.Navigator, opts ...Option) *ResultView {
	v := &ResultView{
		searcher: searcher,
		nav:      nav,
		loc:      defaultLocation(),
		snap:     Snapshot{State: StateNoSearchData},
		subs:     make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetCriteria points the view at new criteria. The returned channel closes
// once the load it started settles; it is already closed when nothing was
// started.
func (v *ResultView) SetCriteria(ctx context.Context, criteria *domain.SearchCriteria) <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return closedChan()
	}

	if criteria == nil || !criteria.Complete() {
		v.stopLocked()
		v.gen++
		v.criteria = nil
		v.flights = nil
		v.setLocked(Snapshot{State: StateNoSearchData})
		return closedChan()
	}

	if v.criteria != nil && v.criteria.Equal(*criteria) {
		if v.done != nil {
			return v.done
		}
		return closedChan()
	}

	v.stopLocked()
	v.gen++
	gen := v.gen
	c := *criteria
	v.criteria = &c
	v.flights = nil
	v.setLocked(Snapshot{State: StateLoading, Criteria: c})

	loadCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	v.cancel = cancel
	v.done = done

	go func() {
		defer cancel()
		v.load(loadCtx, gen, c, done)
	}()
	return done
}

func (v *ResultView) load(ctx context.Context, gen uint64, criteria domain.SearchCriteria, done chan struct{}) {
	defer close(done)

	result, err := v.searcher.Search(ctx, criteria)

	var resultID string
	if err == nil && len(result.Flights) > 0 && v.store != nil && ctx.Err() == nil {
		resultID = uuid.NewString()
		if serr := v.store.SaveResults(ctx, resultID, result.Flights, v.storeTTL); serr != nil {
			slog.WarnContext(ctx, "failed to store result set, booking disabled for this page", "error", serr)
			resultID = ""
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen {
		return
	}
	v.cancel = nil

	if err != nil {
		v.setLocked(Snapshot{State: StateError, Criteria: criteria, Err: err})
		return
	}
	if len(result.Flights) == 0 {
		v.setLocked(Snapshot{State: StateEmpty, Criteria: criteria, Source: result.Source})
		return
	}
	v.flights = domain.CloneFlights(result.Flights)
	v.setLocked(Snapshot{State: StateResults, Criteria: criteria, Source: result.Source, Cards: v.cards(v.flights), ResultID: resultID})
}

// Resume puts the view back on a stored result set so Book can pick from it.
func (v *ResultView) Resume(ctx context.Context, id string) error {
	if v.store == nil {
		return ErrResultsExpired
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrResultsExpired
	}
	flights, err := v.store.LoadResults(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load result set: %w", err)
	}
	if len(flights) == 0 {
		return ErrResultsExpired
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.stopLocked()
	v.gen++
	v.criteria = nil
	v.flights = domain.CloneFlights(flights)
	v.setLocked(Snapshot{State: StateResults, Cards: v.cards(v.flights), ResultID: id})
	return nil
}

func (v *ResultView) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.snap
	snap.Cards = append([]Card(nil), v.snap.Cards...)
	for i := range snap.Cards {
		snap.Cards[i].Flight = snap.Cards[i].Flight.Clone()
	}
	return snap
}

// Subscribe returns a channel that receives a signal after each state change
// and a func that stops the subscription. Signals coalesce.
func (v *ResultView) Subscribe() (<-chan struct{}, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan struct{}, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}
	v.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if _, ok := v.subs[ch]; ok {
				delete(v.subs, ch)
				close(ch)
			}
		})
	}
}

// Book hands the flight shown at index to the booking route.
func (v *ResultView) Book(ctx context.Context, index int) (string, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return "", ErrClosed
	}
	if v.snap.State != StateResults || index < 0 || index >= len(v.flights) {
		v.mu.Unlock()
		return "", fmt.Errorf("%w: %d", ErrNoSuchFlight, index)
	}
	flight := v.flights[index].Clone()
	v.mu.Unlock()

	return v.nav.Navigate(ctx, navigation.Booking, flight)
}

func (v *ResultView) GoHome(ctx context.Context) (string, error) {
	return v.nav.Navigate(ctx, navigation.Home, nil)
}

// Close cancels any load in flight and ends all subscriptions.
func (v *ResultView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.stopLocked()
	for ch := range v.subs {
		close(ch)
		delete(v.subs, ch)
	}
}

func (v *ResultView) stopLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.done = nil
}

func (v *ResultView) setLocked(snap Snapshot) {
	v.snap = snap
	for ch := range v.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (v *ResultView) cards(flights []domain.FlightRecord) []Card {
	cards := make([]Card, len(flights))
	for i, f := range flights {
		cards[i] = Card{
			Index:        i,
			Airline:      f.Airline.Name,
			Route:        f.Departure.IATA + " → " + f.Arrival.IATA,
			Departure:    format.Time(f.Departure.Scheduled, v.loc),
			Arrival:      format.Time(f.Arrival.Scheduled, v.loc),
			FlightNumber: f.Flight.IATA,
			Price:        format.Price(f.Price),
			Flight:       f.Clone(),
		}
	}
	return cards
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.UTC
	}
	return loc
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
