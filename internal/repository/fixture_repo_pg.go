package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FixtureRepository interface {
	List(ctx context.Context) ([]domain.FlightRecord, error)
}

type PGFixtureRepository struct {
	db *pgxpool.Pool
}

func NewFixtureRepository(db *pgxpool.Pool) FixtureRepository {
	return &PGFixtureRepository{db: db}
}

func (r *PGFixtureRepository) List(ctx context.Context) ([]domain.FlightRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT airline_name, flight_iata, flight_number, departure_iata, departure_scheduled, arrival_iata, arrival_scheduled, price FROM fixture_flights ORDER BY departure_scheduled`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.FlightRecord, 0)
	for rows.Next() {
		var (
			f                domain.FlightRecord
			arrivalScheduled *time.Time
		)
		if err := rows.Scan(&f.Airline.Name, &f.Flight.IATA, &f.Flight.Number, &f.Departure.IATA, &f.Departure.Scheduled, &f.Arrival.IATA, &arrivalScheduled, &f.Price); err != nil {
			return nil, err
		}
		if arrivalScheduled != nil {
			f.Arrival.Scheduled = *arrivalScheduled
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FixtureRepository = (*PGFixtureRepository)(nil)
