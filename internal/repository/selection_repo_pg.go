package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SelectionRepository interface {
	Insert(ctx context.Context, selection *domain.Selection) error
	PurgeBefore(ctx context.Context, deadline time.Time) (int64, error)
}

type PGSelectionRepository struct {
	db *pgxpool.Pool
}

func NewSelectionRepository(db *pgxpool.Pool) SelectionRepository {
	return &PGSelectionRepository{db: db}
}

// Insert is idempotent on token so a redelivered event is recorded once.
func (r *PGSelectionRepository) Insert(ctx context.Context, s *domain.Selection) error {
	return r.db.QueryRow(ctx, `INSERT INTO flight_selections (token, airline, flight_iata, origin, destination, departure_at, price, selected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (token) DO UPDATE SET token = EXCLUDED.token
		RETURNING id, recorded_at`, s.Token, s.Airline, s.FlightIATA, s.Origin, s.Destination, s.DepartureAt, s.Price, s.SelectedAt).
		Scan(&s.ID, &s.RecordedAt)
}

func (r *PGSelectionRepository) PurgeBefore(ctx context.Context, deadline time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flight_selections WHERE selected_at < $1`, deadline)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ SelectionRepository = (*PGSelectionRepository)(nil)
