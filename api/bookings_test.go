package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/Domenick1991/skyresults/internal/navigation"
	"github.com/Domenick1991/skyresults/internal/service/booking"
	"github.com/Domenick1991/skyresults/internal/service/search"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHandoffUseCase is a mock implementation of booking.HandoffUseCase
type MockHandoffUseCase struct {
	mock.Mock
}

func (m *MockHandoffUseCase) Navigate(ctx context.Context, route navigation.Route, payload any) (string, error) {
	args := m.Called(ctx, route, payload)
	return args.String(0), args.Error(1)
}

func (m *MockHandoffUseCase) Get(ctx context.Context, token string) (*domain.Handoff, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Handoff), args.Error(1)
}

// memoryResults is an in-memory view.ResultStore.
type memoryResults struct {
	mu   sync.Mutex
	sets map[string][]domain.FlightRecord
	ttl  time.Duration
}

func newMemoryResults() *memoryResults {
	return &memoryResults{sets: make(map[string][]domain.FlightRecord)}
}

func (m *memoryResults) SaveResults(_ context.Context, id string, flights []domain.FlightRecord, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[id] = domain.CloneFlights(flights)
	m.ttl = ttl
	return nil
}

func (m *memoryResults) LoadResults(_ context.Context, id string) ([]domain.FlightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneFlights(m.sets[id]), nil
}

type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) SaveResults(ctx context.Context, id string, flights []domain.FlightRecord, ttl time.Duration) error {
	args := m.Called(ctx, id, flights, ttl)
	return args.Error(0)
}

func (m *MockResultStore) LoadResults(ctx context.Context, id string) ([]domain.FlightRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightRecord), args.Error(1)
}

func postForm(values url.Values) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c, w
}

var hiddenField = regexp.MustCompile(`name="(results|index)" value="([^"]*)"`)

// bookNowForm extracts the first Book Now form's fields from a results page.
func bookNowForm(t *testing.T, body string) url.Values {
	t.Helper()
	values := url.Values{}
	for _, m := range hiddenField.FindAllStringSubmatch(body, -1) {
		if values.Get(m[1]) == "" {
			values.Set(m[1], m[2])
		}
	}
	require.NotEmpty(t, values.Get("results"))
	require.NotEmpty(t, values.Get("index"))
	return values
}

func TestBookingHandler_create_BooksRenderedRecord(t *testing.T) {
	loc := kolkata(t)
	results := newMemoryResults()
	searchService := &MockSearchUseCase{}
	handoffService := &MockHandoffUseCase{}
	searchHandler := NewSearchHandler(searchService, handoffService, loc, results, 30*time.Minute)
	bookingHandler := NewBookingHandler(handoffService, results)

	other := sampleFlight()
	other.Flight = domain.FlightNumber{IATA: "AI0805", Number: "805"}
	shown := []domain.FlightRecord{other, sampleFlight()}
	criteria := domain.ParseCriteria("DEL", "BOM", "2024-05-01", loc)
	searchService.On("Search", mock.Anything, criteria).
		Return(&search.Result{Criteria: criteria, Flights: shown, Source: search.SourceFallback}, nil).Once()

	page, pageW := newTestContext("/search?from=DEL&to=BOM&date=2024-05-01")
	searchHandler.page(page)
	require.Equal(t, http.StatusOK, pageW.Code)

	form := bookNowForm(t, pageW.Body.String())
	form.Set("index", "1")
	c, w := postForm(form)

	handoffService.On("Navigate", mock.Anything, navigation.Booking, shown[1]).Return("/book/token123", nil).Once()

	bookingHandler.create(c)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/token123", w.Header().Get("Location"))
	handoffService.AssertExpectations(t)
}

func TestBookingHandler_create_Malformed(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	handler := NewBookingHandler(mockService, newMemoryResults())

	for _, values := range []url.Values{
		{},
		{"results": {"4c1f5d0e-8a47-4f3e-9d55-2b1a4c7e9f10"}},
		{"results": {"4c1f5d0e-8a47-4f3e-9d55-2b1a4c7e9f10"}, "index": {"first"}},
		{"flight": {`{"departure":{"iata":"DEL","scheduled":"2024-05-01T10:00:00Z"},"arrival":{"iata":"BOM"}}`}},
	} {
		c, w := postForm(values)
		handler.create(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	mockService.AssertNotCalled(t, "Navigate")
}

func TestBookingHandler_create_UnknownResultsOrIndex(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	results := newMemoryResults()
	handler := NewBookingHandler(mockService, results)
	id := "4c1f5d0e-8a47-4f3e-9d55-2b1a4c7e9f10"
	require.NoError(t, results.SaveResults(context.Background(), id, []domain.FlightRecord{sampleFlight()}, time.Minute))

	for _, values := range []url.Values{
		{"results": {"9b7e3a2c-1d4f-4e8a-b6c5-0f9e8d7c6b5a"}, "index": {"0"}},
		{"results": {"not-an-id"}, "index": {"0"}},
		{"results": {id}, "index": {"1"}},
		{"results": {id}, "index": {"-1"}},
	} {
		c, w := postForm(values)
		handler.create(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, values.Encode())
	}
	mockService.AssertNotCalled(t, "Navigate")
}

func TestBookingHandler_create_UnpricedRecordRejected(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	results := newMemoryResults()
	handler := NewBookingHandler(mockService, results)
	id := "4c1f5d0e-8a47-4f3e-9d55-2b1a4c7e9f10"
	unpriced := sampleFlight()
	unpriced.Price = nil
	require.NoError(t, results.SaveResults(context.Background(), id, []domain.FlightRecord{unpriced}, time.Minute))

	c, w := postForm(url.Values{"results": {id}, "index": {"0"}})
	mockService.On("Navigate", mock.Anything, navigation.Booking, unpriced).Return("", navigation.ErrInvalidPayload).Once()

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_create_StoreFailure(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	store := &MockResultStore{}
	handler := NewBookingHandler(mockService, store)
	id := "4c1f5d0e-8a47-4f3e-9d55-2b1a4c7e9f10"

	store.On("LoadResults", mock.Anything, id).Return(nil, errors.New("redis down")).Once()
	c, w := postForm(url.Values{"results": {id}, "index": {"0"}})

	handler.create(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockService.AssertNotCalled(t, "Navigate")
}

func TestBookingHandler_create_HandoffFailure(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	results := newMemoryResults()
	handler := NewBookingHandler(mockService, results)
	id := "4c1f5d0e-8a47-4f3e-9d55-2b1a4c7e9f10"
	require.NoError(t, results.SaveResults(context.Background(), id, []domain.FlightRecord{sampleFlight()}, time.Minute))

	c, w := postForm(url.Values{"results": {id}, "index": {"0"}})
	mockService.On("Navigate", mock.Anything, navigation.Booking, mock.Anything).Return("", errors.New("redis down")).Once()

	handler.create(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	handler := NewBookingHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/book/token123", nil)
	c.Params = gin.Params{{Key: "token", Value: "token123"}}

	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	handoff := &domain.Handoff{Token: "token123", Flight: sampleFlight(), CreatedAt: created, ExpiresAt: created.Add(30 * time.Minute)}
	mockService.On("Get", c.Request.Context(), "token123").Return(handoff, nil).Once()

	handler.get(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp handoffResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token123", resp.Token)
	assert.Equal(t, "6E2134", resp.Flight.Flight.IATA)
	assert.Equal(t, "2024-05-01T09:30:00Z", resp.ExpiresAt)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockHandoffUseCase{}
	handler := NewBookingHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/book/missing", nil)
	c.Params = gin.Params{{Key: "token", Value: "missing"}}

	mockService.On("Get", c.Request.Context(), "missing").Return(nil, booking.ErrHandoffNotFound).Once()

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
