package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradecap/internal/domain"
)

const withdrawalColumns = `id, user_id, amount, when_withdraw, date, created_at`

// WithdrawalRepositoryImpl implements the WithdrawalRepository interface
type WithdrawalRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewWithdrawalRepository creates a new WithdrawalRepository
func NewWithdrawalRepository(db *pgxpool.Pool) domain.WithdrawalRepository {
	return &WithdrawalRepositoryImpl{db: db}
}

// Create creates a new withdrawal record
func (r *WithdrawalRepositoryImpl) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, user_id, amount, when_withdraw, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		withdrawal.ID,
		withdrawal.UserID,
		withdrawal.Amount,
		withdrawal.WhenWithdraw,
		withdrawal.Date,
		withdrawal.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}

	return nil
}

// GetByUser retrieves all withdrawals for a user, most recent first
func (r *WithdrawalRepositoryImpl) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE user_id = $1 ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []*domain.Withdrawal
	for rows.Next() {
		wd := &domain.Withdrawal{}
		err := rows.Scan(
			&wd.ID,
			&wd.UserID,
			&wd.Amount,
			&wd.WhenWithdraw,
			&wd.Date,
			&wd.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, wd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}

	return withdrawals, nil
}

// Delete removes a user's withdrawal and returns the deleted record
func (r *WithdrawalRepositoryImpl) Delete(ctx context.Context, id, userID uuid.UUID) (*domain.Withdrawal, error) {
	query := `
		DELETE FROM withdrawals
		WHERE id = $1 AND user_id = $2
		RETURNING ` + withdrawalColumns

	wd := &domain.Withdrawal{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&wd.ID,
		&wd.UserID,
		&wd.Amount,
		&wd.WhenWithdraw,
		&wd.Date,
		&wd.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete withdrawal: %w", err)
	}

	return wd, nil
}
