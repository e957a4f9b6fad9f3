package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradecap/internal/domain"
)

const signalColumns = `id, user_id, title, calendar_date, window_label, status, traded,
	       starting_capital, final_capital, profit, created_at`

// SignalRepositoryImpl implements the SignalRepository interface
type SignalRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewSignalRepository creates a new SignalRepository
func NewSignalRepository(db *pgxpool.Pool) domain.SignalRepository {
	return &SignalRepositoryImpl{db: db}
}

// InsertMany saves a batch of newly provisioned signals
func (r *SignalRepositoryImpl) InsertMany(ctx context.Context, signals []*domain.Signal) error {
	query := `
		INSERT INTO signals (
			id, user_id, title, calendar_date, window_label, status, traded,
			starting_capital, final_capital, profit, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	batch := &pgx.Batch{}
	for _, s := range signals {
		batch.Queue(query,
			s.ID,
			s.UserID,
			s.Title,
			s.CalendarDate,
			s.WindowLabel,
			s.Status,
			s.Traded,
			s.StartingCapital,
			s.FinalCapital,
			s.Profit,
			s.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range signals {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert signals: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a signal by its ID
func (r *SignalRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE id = $1`

	signal, err := r.scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get signal by ID: %w", err)
	}

	return signal, nil
}

// GetPendingForWindow retrieves all not-started signals for an exact window
func (r *SignalRepositoryImpl) GetPendingForWindow(ctx context.Context, date time.Time, label domain.WindowLabel) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE status = $1 AND calendar_date = $2 AND window_label = $3
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, domain.SignalNotStarted, date, label)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending signals: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// GetPendingForUserWindow retrieves a user's not-started signal for an exact window
func (r *SignalRepositoryImpl) GetPendingForUserWindow(ctx context.Context, userID uuid.UUID, date time.Time, label domain.WindowLabel) (*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE user_id = $1 AND status = $2 AND calendar_date = $3 AND window_label = $4
	`

	signal, err := r.scanOne(r.db.QueryRow(ctx, query, userID, domain.SignalNotStarted, date, label))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending signal: %w", err)
	}

	return signal, nil
}

// GetUnprocessedThrough retrieves all not-started signals dated on or before the given day
func (r *SignalRepositoryImpl) GetUnprocessedThrough(ctx context.Context, day time.Time) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE status = $1 AND calendar_date <= $2
		ORDER BY calendar_date ASC
	`

	rows, err := r.db.Query(ctx, query, domain.SignalNotStarted, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed signals: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// GetByUserAndDay retrieves a user's signals for one calendar day
func (r *SignalRepositoryImpl) GetByUserAndDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE user_id = $1 AND calendar_date = $2
		ORDER BY window_label = 'evening', calendar_date ASC
	`

	rows, err := r.db.Query(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for day: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// GetByUser retrieves all of a user's signals
func (r *SignalRepositoryImpl) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE user_id = $1
		ORDER BY calendar_date ASC, window_label = 'evening'
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for user: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ExistsForDay reports whether the user already has signals for the day
func (r *SignalRepositoryImpl) ExistsForDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM signals WHERE user_id = $1 AND calendar_date = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check signals for day: %w", err)
	}

	return exists, nil
}

// MarkCompleted performs the one-way execute transition. The status guard in
// the WHERE clause is the concurrency safeguard: whoever observes not-started
// and wins the update applies profit; a loser gets ErrAlreadyProcessed.
func (r *SignalRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, startingCapital, finalCapital, profit float64) error {
	query := `
		UPDATE signals
		SET status = $1, traded = TRUE, starting_capital = $2, final_capital = $3, profit = $4
		WHERE id = $5 AND status = $6
	`

	cmdTag, err := r.db.Exec(ctx, query,
		domain.SignalCompleted, startingCapital, finalCapital, profit,
		id, domain.SignalNotStarted,
	)
	if err != nil {
		return fmt.Errorf("failed to mark signal completed: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}

	return nil
}

func (r *SignalRepositoryImpl) scanOne(row pgx.Row) (*domain.Signal, error) {
	signal := &domain.Signal{}
	err := row.Scan(
		&signal.ID,
		&signal.UserID,
		&signal.Title,
		&signal.CalendarDate,
		&signal.WindowLabel,
		&signal.Status,
		&signal.Traded,
		&signal.StartingCapital,
		&signal.FinalCapital,
		&signal.Profit,
		&signal.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return signal, nil
}

func (r *SignalRepositoryImpl) scanAll(rows pgx.Rows) ([]*domain.Signal, error) {
	var signals []*domain.Signal
	for rows.Next() {
		signal := &domain.Signal{}
		err := rows.Scan(
			&signal.ID,
			&signal.UserID,
			&signal.Title,
			&signal.CalendarDate,
			&signal.WindowLabel,
			&signal.Status,
			&signal.Traded,
			&signal.StartingCapital,
			&signal.FinalCapital,
			&signal.Profit,
			&signal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signals: %w", err)
	}

	return signals, nil
}
