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

const depositColumns = `id, user_id, amount, bonus, capital, when_deposited, date, created_at`

// DepositRepositoryImpl implements the DepositRepository interface
type DepositRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewDepositRepository creates a new DepositRepository
func NewDepositRepository(db *pgxpool.Pool) domain.DepositRepository {
	return &DepositRepositoryImpl{db: db}
}

// Create creates a new deposit record
func (r *DepositRepositoryImpl) Create(ctx context.Context, deposit *domain.Deposit) error {
	query := `
		INSERT INTO deposits (id, user_id, amount, bonus, capital, when_deposited, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		deposit.ID,
		deposit.UserID,
		deposit.Amount,
		deposit.Bonus,
		deposit.Capital,
		deposit.WhenDeposited,
		deposit.Date,
		deposit.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}

	return nil
}

// GetByID retrieves a deposit by ID
func (r *DepositRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1`
	return scanDeposit(r.db.QueryRow(ctx, query, id))
}

// GetByUser retrieves all deposits for a user, most recent first
func (r *DepositRepositoryImpl) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE user_id = $1 ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []*domain.Deposit
	for rows.Next() {
		dep := &domain.Deposit{}
		err := rows.Scan(
			&dep.ID,
			&dep.UserID,
			&dep.Amount,
			&dep.Bonus,
			&dep.Capital,
			&dep.WhenDeposited,
			&dep.Date,
			&dep.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, dep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposits: %w", err)
	}

	return deposits, nil
}

// Delete removes a user's deposit and returns the deleted record
func (r *DepositRepositoryImpl) Delete(ctx context.Context, id, userID uuid.UUID) (*domain.Deposit, error) {
	query := `
		DELETE FROM deposits
		WHERE id = $1 AND user_id = $2
		RETURNING ` + depositColumns

	return scanDeposit(r.db.QueryRow(ctx, query, id, userID))
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	dep := &domain.Deposit{}
	err := row.Scan(
		&dep.ID,
		&dep.UserID,
		&dep.Amount,
		&dep.Bonus,
		&dep.Capital,
		&dep.WhenDeposited,
		&dep.Date,
		&dep.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return dep, nil
}
