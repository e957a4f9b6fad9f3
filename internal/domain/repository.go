package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignalRepository defines the interface for signal data operations
type SignalRepository interface {
	// InsertMany saves a batch of newly provisioned signals
	InsertMany(ctx context.Context, signals []*Signal) error

	// GetByID retrieves a signal by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Signal, error)

	// GetPendingForWindow retrieves all not-started signals for an exact
	// window (calendar date + label), across all users
	GetPendingForWindow(ctx context.Context, date time.Time, label WindowLabel) ([]*Signal, error)

	// GetPendingForUserWindow retrieves a user's not-started signal for an
	// exact window, or ErrNotFound
	GetPendingForUserWindow(ctx context.Context, userID uuid.UUID, date time.Time, label WindowLabel) (*Signal, error)

	// GetUnprocessedThrough retrieves all not-started signals dated on or
	// before the given day, across all users
	GetUnprocessedThrough(ctx context.Context, day time.Time) ([]*Signal, error)

	// GetByUserAndDay retrieves a user's signals for one calendar day
	GetByUserAndDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*Signal, error)

	// GetByUser retrieves all of a user's signals
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Signal, error)

	// ExistsForDay reports whether the user already has signals for the day
	ExistsForDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)

	// MarkCompleted performs the one-way execute transition as a conditional
	// update guarded on status = not-started. Returns ErrAlreadyProcessed if
	// the guard did not match.
	MarkCompleted(ctx context.Context, id uuid.UUID, startingCapital, finalCapital, profit float64) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetAll retrieves all users
	GetAll(ctx context.Context) ([]*User, error)

	// UpdateRunningCapital sets the user's running capital
	UpdateRunningCapital(ctx context.Context, userID uuid.UUID, capital float64) error

	// AdjustCapital applies signed deltas to running and weekly capital
	AdjustCapital(ctx context.Context, userID uuid.UUID, runningDelta, weeklyDelta float64) error
}

// RevenueRepository defines the interface for monthly revenue aggregates
type RevenueRepository interface {
	// Upsert creates or replaces the aggregate keyed by (user, month, year)
	Upsert(ctx context.Context, userID uuid.UUID, month string, year int, totalRevenue float64) error

	// GetByUser retrieves all revenue aggregates for a user
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*MonthlyRevenue, error)
}

// DepositRepository defines the interface for deposit records
type DepositRepository interface {
	Create(ctx context.Context, deposit *Deposit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Deposit, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Deposit, error)

	// Delete removes a user's deposit and returns the deleted record
	Delete(ctx context.Context, id, userID uuid.UUID) (*Deposit, error)
}

// WithdrawalRepository defines the interface for withdrawal records
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *Withdrawal) error
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Withdrawal, error)

	// Delete removes a user's withdrawal and returns the deleted record
	Delete(ctx context.Context, id, userID uuid.UUID) (*Withdrawal, error)
}
