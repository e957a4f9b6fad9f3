package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradecap/internal/domain"
	"tradecap/internal/utils"
)

type fakeSignalRepo struct {
	signals map[uuid.UUID]*domain.Signal
}

func newFakeSignalRepo(signals ...*domain.Signal) *fakeSignalRepo {
	repo := &fakeSignalRepo{signals: make(map[uuid.UUID]*domain.Signal)}
	for _, s := range signals {
		repo.signals[s.ID] = s
	}
	return repo
}

func (r *fakeSignalRepo) InsertMany(_ context.Context, signals []*domain.Signal) error {
	for _, s := range signals {
		r.signals[s.ID] = s
	}
	return nil
}

func (r *fakeSignalRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Signal, error) {
	s, ok := r.signals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *fakeSignalRepo) GetPendingForWindow(_ context.Context, date time.Time, label domain.WindowLabel) ([]*domain.Signal, error) {
	var out []*domain.Signal
	for _, s := range r.signals {
		if s.Status == domain.SignalNotStarted && s.WindowLabel == label && sameDay(s.CalendarDate, date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) GetPendingForUserWindow(_ context.Context, userID uuid.UUID, date time.Time, label domain.WindowLabel) (*domain.Signal, error) {
	for _, s := range r.signals {
		if s.UserID == userID && s.Status == domain.SignalNotStarted && s.WindowLabel == label && sameDay(s.CalendarDate, date) {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSignalRepo) GetUnprocessedThrough(_ context.Context, day time.Time) ([]*domain.Signal, error) {
	var out []*domain.Signal
	for _, s := range r.signals {
		if s.Status == domain.SignalNotStarted && !s.CalendarDate.After(day) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) GetByUserAndDay(_ context.Context, userID uuid.UUID, day time.Time) ([]*domain.Signal, error) {
	var out []*domain.Signal
	for _, s := range r.signals {
		if s.UserID == userID && sameDay(s.CalendarDate, day) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) GetByUser(_ context.Context, userID uuid.UUID) ([]*domain.Signal, error) {
	var out []*domain.Signal
	for _, s := range r.signals {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) ExistsForDay(_ context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	for _, s := range r.signals {
		if s.UserID == userID && sameDay(s.CalendarDate, day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSignalRepo) MarkCompleted(_ context.Context, id uuid.UUID, startingCapital, finalCapital, profit float64) error {
	s, ok := r.signals[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Status != domain.SignalNotStarted {
		return domain.ErrAlreadyProcessed
	}
	s.Status = domain.SignalCompleted
	s.Traded = true
	s.StartingCapital = startingCapital
	s.FinalCapital = finalCapital
	s.Profit = profit
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetAll(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRunningCapital(_ context.Context, userID uuid.UUID, capital float64) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.RunningCapital = capital
	return nil
}

func (r *fakeUserRepo) AdjustCapital(_ context.Context, userID uuid.UUID, runningDelta, weeklyDelta float64) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.RunningCapital += runningDelta
	u.WeeklyCapital += weeklyDelta
	return nil
}

type fakeRevenueRepo struct {
	upserts map[string]float64
}

func newFakeRevenueRepo() *fakeRevenueRepo {
	return &fakeRevenueRepo{upserts: make(map[string]float64)}
}

func (r *fakeRevenueRepo) Upsert(_ context.Context, userID uuid.UUID, month string, year int, totalRevenue float64) error {
	r.upserts[userID.String()+"/"+month] = totalRevenue
	return nil
}

func (r *fakeRevenueRepo) GetByUser(_ context.Context, _ uuid.UUID) ([]*domain.MonthlyRevenue, error) {
	return nil, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newSignal(userID uuid.UUID, date time.Time, label domain.WindowLabel) *domain.Signal {
	return &domain.Signal{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "Signal 1",
		CalendarDate: date,
		WindowLabel:  label,
		Status:       domain.SignalNotStarted,
	}
}

func testEngine(signalRepo *fakeSignalRepo, userRepo *fakeUserRepo, revenueRepo *fakeRevenueRepo, now time.Time) *TradeEngine {
	return NewTradeEngine(signalRepo, userRepo, revenueRepo, utils.FixedClock{Instant: now}, false, nil, zerolog.Nop())
}

func TestExecuteSignalAppliesCompoundProfit(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	user := &domain.User{ID: userID, RunningCapital: 2000}
	signal := newSignal(userID, date, domain.WindowMorning)

	signalRepo := newFakeSignalRepo(signal)
	userRepo := newFakeUserRepo(user)
	revenueRepo := newFakeRevenueRepo()
	engine := testEngine(signalRepo, userRepo, revenueRepo, date.Add(14*time.Hour+10*time.Minute))

	result, err := engine.ExecuteSignal(context.Background(), signal, user)
	if err != nil {
		t.Fatalf("ExecuteSignal failed: %v", err)
	}

	if !almostEqual(result.TradeAmount, 20) {
		t.Errorf("trade amount = %v, want 20", result.TradeAmount)
	}
	if !almostEqual(result.Profit, 17.6) {
		t.Errorf("profit = %v, want 17.6", result.Profit)
	}
	if !almostEqual(result.BalanceAfter, 2017.6) {
		t.Errorf("balance after = %v, want 2017.6", result.BalanceAfter)
	}
	if user.RunningCapital != result.BalanceAfter {
		t.Errorf("running capital not persisted: %v", user.RunningCapital)
	}
	if signal.Status != domain.SignalCompleted {
		t.Errorf("signal status = %q, want completed", signal.Status)
	}
	if !almostEqual(revenueRepo.upserts[userID.String()+"/February"], 2017.6) {
		t.Errorf("revenue upsert = %v, want 2017.6", revenueRepo.upserts[userID.String()+"/February"])
	}
}

func TestExecuteSignalIsIdempotent(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	user := &domain.User{ID: userID, RunningCapital: 2000}
	signal := newSignal(userID, date, domain.WindowMorning)

	signalRepo := newFakeSignalRepo(signal)
	userRepo := newFakeUserRepo(user)
	engine := testEngine(signalRepo, userRepo, newFakeRevenueRepo(), date.Add(14*time.Hour))

	if _, err := engine.ExecuteSignal(context.Background(), signal, user); err != nil {
		t.Fatalf("first execution failed: %v", err)
	}
	capitalAfterFirst := user.RunningCapital

	_, err := engine.ExecuteSignal(context.Background(), signal, user)
	if !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("second execution error = %v, want ErrAlreadyProcessed", err)
	}
	if user.RunningCapital != capitalAfterFirst {
		t.Errorf("capital changed on redundant execution: %v", user.RunningCapital)
	}
}

func TestExecuteWindowProcessesBothWindowsOfADay(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	user := &domain.User{ID: userID, RunningCapital: 2000}
	morning := newSignal(userID, date, domain.WindowMorning)
	evening := newSignal(userID, date, domain.WindowEvening)

	signalRepo := newFakeSignalRepo(morning, evening)
	userRepo := newFakeUserRepo(user)
	revenueRepo := newFakeRevenueRepo()

	engine := testEngine(signalRepo, userRepo, revenueRepo, date.Add(14*time.Hour+15*time.Minute))
	result, err := engine.ExecuteWindow(context.Background())
	if err != nil {
		t.Fatalf("morning window failed: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("morning processed = %d, want 1", result.Processed)
	}

	engine = testEngine(signalRepo, userRepo, revenueRepo, date.Add(19*time.Hour+15*time.Minute))
	result, err = engine.ExecuteWindow(context.Background())
	if err != nil {
		t.Fatalf("evening window failed: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("evening processed = %d, want 1", result.Processed)
	}

	// 2000 * 1.0088^2
	want := 2000 * 1.0088 * 1.0088
	if !almostEqual(user.RunningCapital, want) {
		t.Errorf("running capital = %v, want %v", user.RunningCapital, want)
	}
	if evening.StartingCapital != morning.FinalCapital {
		t.Errorf("evening basis %v does not chain from morning result %v", evening.StartingCapital, morning.FinalCapital)
	}
}

func TestExecuteWindowOutsideWindowIsNoop(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	signal := newSignal(userID, date, domain.WindowMorning)

	signalRepo := newFakeSignalRepo(signal)
	userRepo := newFakeUserRepo(&domain.User{ID: userID, RunningCapital: 2000})

	engine := testEngine(signalRepo, userRepo, newFakeRevenueRepo(), date.Add(11*time.Hour))
	result, err := engine.ExecuteWindow(context.Background())
	if err != nil {
		t.Fatalf("ExecuteWindow failed: %v", err)
	}
	if result.Processed != 0 || len(result.Failed) != 0 {
		t.Errorf("expected no-op outside window, got %+v", result)
	}
	if signal.Status != domain.SignalNotStarted {
		t.Errorf("signal status changed outside window: %q", signal.Status)
	}
}

func TestExecuteWindowIsolatesPerUserFailures(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	goodUser := &domain.User{ID: uuid.New(), RunningCapital: 1000}
	orphanID := uuid.New() // no user record behind this signal

	good := newSignal(goodUser.ID, date, domain.WindowMorning)
	orphan := newSignal(orphanID, date, domain.WindowMorning)

	signalRepo := newFakeSignalRepo(good, orphan)
	userRepo := newFakeUserRepo(goodUser)

	engine := testEngine(signalRepo, userRepo, newFakeRevenueRepo(), date.Add(14*time.Hour+5*time.Minute))
	result, err := engine.ExecuteWindow(context.Background())
	if err != nil {
		t.Fatalf("ExecuteWindow failed: %v", err)
	}

	if result.Processed != 1 {
		t.Errorf("processed = %d, want 1", result.Processed)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(result.Failed))
	}
	if result.Failed[0].UserID != orphanID {
		t.Errorf("failed user = %s, want %s", result.Failed[0].UserID, orphanID)
	}
	if good.Status != domain.SignalCompleted {
		t.Errorf("good user's signal not completed despite isolated failure")
	}
}

func TestExecuteForUser(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	user := &domain.User{ID: userID, RunningCapital: 2000}
	signal := newSignal(userID, date, domain.WindowMorning)

	signalRepo := newFakeSignalRepo(signal)
	userRepo := newFakeUserRepo(user)

	engine := testEngine(signalRepo, userRepo, newFakeRevenueRepo(), date.Add(14*time.Hour+20*time.Minute))

	executed, updatedUser, err := engine.ExecuteForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("ExecuteForUser failed: %v", err)
	}
	if executed.Status != domain.SignalCompleted {
		t.Errorf("signal status = %q, want completed", executed.Status)
	}
	if !almostEqual(updatedUser.RunningCapital, 2017.6) {
		t.Errorf("running capital = %v, want 2017.6", updatedUser.RunningCapital)
	}

	// No pending signal remains for this window.
	_, _, err = engine.ExecuteForUser(context.Background(), userID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second call error = %v, want ErrNotFound", err)
	}
}

func TestExecuteForUserOutsideWindow(t *testing.T) {
	date := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	signalRepo := newFakeSignalRepo(newSignal(userID, date, domain.WindowMorning))
	userRepo := newFakeUserRepo(&domain.User{ID: userID, RunningCapital: 2000})

	engine := testEngine(signalRepo, userRepo, newFakeRevenueRepo(), date.Add(9*time.Hour))

	_, _, err := engine.ExecuteForUser(context.Background(), userID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound outside window", err)
	}
}
