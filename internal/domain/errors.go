package domain

import "errors"

// Sentinel errors surfaced by the engine. Callers branch on these with
// errors.Is; everything else is treated as a store failure.
var (
	// ErrNotFound means no signal or user exists for the given key.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyProcessed means the signal's one-way transition already ran.
	// Success-equivalent: a redundant trigger must not double-apply profit.
	ErrAlreadyProcessed = errors.New("signal already processed")

	// ErrInsufficientBalance means a withdrawal exceeds the available balance
	// at its timing point.
	ErrInsufficientBalance = errors.New("insufficient balance for withdrawal")

	// ErrInvalidTiming means a timing value outside the known enum was given.
	ErrInvalidTiming = errors.New("invalid trade timing")
)
