package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradecap/internal/domain"
)

// RevenueRepositoryImpl implements the RevenueRepository interface
type RevenueRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewRevenueRepository creates a new RevenueRepository
func NewRevenueRepository(db *pgxpool.Pool) domain.RevenueRepository {
	return &RevenueRepositoryImpl{db: db}
}

// Upsert creates or replaces the aggregate keyed by (user, month, year)
func (r *RevenueRepositoryImpl) Upsert(ctx context.Context, userID uuid.UUID, month string, year int, totalRevenue float64) error {
	query := `
		INSERT INTO revenues (id, user_id, month, year, total_revenue, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, month, year)
		DO UPDATE SET total_revenue = EXCLUDED.total_revenue, updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, uuid.New(), userID, month, year, totalRevenue)
	if err != nil {
		return fmt.Errorf("failed to upsert revenue: %w", err)
	}

	return nil
}

// GetByUser retrieves all revenue aggregates for a user
func (r *RevenueRepositoryImpl) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MonthlyRevenue, error) {
	query := `
		SELECT id, user_id, month, year, total_revenue, updated_at
		FROM revenues
		WHERE user_id = $1
		ORDER BY year ASC, updated_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenues: %w", err)
	}
	defer rows.Close()

	var revenues []*domain.MonthlyRevenue
	for rows.Next() {
		rev := &domain.MonthlyRevenue{}
		err := rows.Scan(
			&rev.ID,
			&rev.UserID,
			&rev.Month,
			&rev.Year,
			&rev.TotalRevenue,
			&rev.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		revenues = append(revenues, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenues: %w", err)
	}

	return revenues, nil
}
