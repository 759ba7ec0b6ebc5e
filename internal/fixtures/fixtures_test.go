package fixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLister struct {
	mock.Mock
}

func (m *MockLister) List(ctx context.Context) ([]domain.FlightRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightRecord), args.Error(1)
}

func TestEmbedded_AllRenderable(t *testing.T) {
	set, err := Embedded()
	require.NoError(t, err)
	require.Greater(t, set.Len(), 0)

	for _, f := range set.Flights() {
		assert.True(t, f.Renderable(), "fixture %s is missing required fields", f.Flight.IATA)
		assert.Nil(t, f.Price)
	}
}

func TestSet_FlightsReturnsCopy(t *testing.T) {
	set := NewSet([]domain.FlightRecord{{Airline: domain.Airline{Name: "IndiGo"}}})

	got := set.Flights()
	got[0].Airline.Name = "changed"

	assert.Equal(t, "IndiGo", set.Flights()[0].Airline.Name)
}

func TestLoad_Postgres(t *testing.T) {
	ctx := context.Background()
	repo := &MockLister{}
	repo.On("List", ctx).Return([]domain.FlightRecord{{Airline: domain.Airline{Name: "Vistara"}}}, nil).Once()

	set, err := Load(ctx, "postgres", repo)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	repo.AssertExpectations(t)
}

func TestLoad_PostgresError(t *testing.T) {
	ctx := context.Background()
	repo := &MockLister{}
	repo.On("List", ctx).Return(nil, errors.New("connection refused")).Once()

	_, err := Load(ctx, "postgres", repo)
	assert.Error(t, err)
}

func TestLoad_UnknownSource(t *testing.T) {
	_, err := Load(context.Background(), "s3", nil)
	assert.Error(t, err)
}
