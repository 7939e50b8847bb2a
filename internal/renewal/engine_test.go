package renewal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekid-reports/ekid/internal/period"
	"github.com/ekid-reports/ekid/internal/plans"
	"github.com/ekid-reports/ekid/internal/shared"
)

type stubKey struct {
	planID int64
	userID int64
}

type mockStore struct {
	plans       map[int64]*plans.Plan
	stubs       map[stubKey]bool
	branchUsers []int64
	nextID      int64
	failCreate  bool
}

func newMockStore() *mockStore {
	return &mockStore{
		plans:  map[int64]*plans.Plan{},
		stubs:  map[stubKey]bool{},
		nextID: 1,
	}
}

// InTx makes the store double as its own repository. Rollback is emulated by
// restoring a snapshot when fn fails.
func (m *mockStore) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	plansSnap := make(map[int64]*plans.Plan, len(m.plans))
	for id, p := range m.plans {
		cp := *p
		plansSnap[id] = &cp
	}
	stubsSnap := make(map[stubKey]bool, len(m.stubs))
	for k := range m.stubs {
		stubsSnap[k] = true
	}
	if err := fn(ctx, m); err != nil {
		m.plans = plansSnap
		m.stubs = stubsSnap
		return err
	}
	return nil
}

func (m *mockStore) FindActivePlan(context.Context) (*plans.Plan, error) {
	for _, p := range m.plans {
		if p.Status == plans.StatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockStore) FindLatestPlan(context.Context) (*plans.Plan, error) {
	var latest *plans.Plan
	for _, p := range m.plans {
		if latest == nil || p.FiscalYear > latest.FiscalYear ||
			(p.FiscalYear == latest.FiscalYear && p.FiscalMonth > latest.FiscalMonth) {
			latest = p
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockStore) CreatePlan(_ context.Context, in CreatePlanInput) (*plans.Plan, error) {
	if m.failCreate {
		return nil, fmt.Errorf("create plan: boom")
	}
	for _, p := range m.plans {
		if p.Status == plans.StatusActive &&
			p.FiscalMonth == in.Period.Month && p.FiscalYear == in.Period.Year {
			return nil, shared.ErrConflict
		}
	}
	p := &plans.Plan{
		ID:          m.nextID,
		Title:       in.Title,
		Description: in.Description,
		FiscalMonth: in.Period.Month,
		FiscalYear:  in.Period.Year,
		Target:      in.Target,
		Deadline:    in.Deadline,
		Status:      plans.StatusActive,
	}
	m.nextID++
	m.plans[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *mockStore) ArchivePlan(_ context.Context, id int64) error {
	p, ok := m.plans[id]
	if !ok || p.Status != plans.StatusActive {
		return shared.ErrConflict
	}
	p.Status = plans.StatusArchived
	return nil
}

func (m *mockStore) ListBranchUserIDs(context.Context) ([]int64, error) {
	return append([]int64(nil), m.branchUsers...), nil
}

func (m *mockStore) BulkCreateReports(_ context.Context, planID int64, userIDs []int64) error {
	for _, uid := range userIDs {
		k := stubKey{planID: planID, userID: uid}
		if m.stubs[k] {
			return shared.ErrConflict
		}
		m.stubs[k] = true
	}
	return nil
}

func (m *mockStore) activePlan(t *testing.T) *plans.Plan {
	t.Helper()
	p, err := m.FindActivePlan(context.Background())
	require.NoError(t, err)
	return p
}

func newTestEngine(store *mockStore) *Engine {
	return NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCheckAndRenewBootstrapsFirstPlan(t *testing.T) {
	store := newMockStore()
	store.branchUsers = []int64{10, 11, 12}
	engine := newTestEngine(store)

	now := time.Date(2025, time.September, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, engine.CheckAndRenew(context.Background(), now))

	p := store.activePlan(t)
	assert.Equal(t, 1, p.FiscalMonth)
	assert.Equal(t, 2018, p.FiscalYear)
	assert.Equal(t, 0.0, p.Target)
	assert.Equal(t, period.DeadlineFor(period.Period{Month: 1, Year: 2018}), p.Deadline)
	assert.Len(t, store.stubs, 3)
	for _, uid := range store.branchUsers {
		assert.True(t, store.stubs[stubKey{planID: p.ID, userID: uid}])
	}
}

func TestCheckAndRenewBootstrapCopiesLatestTarget(t *testing.T) {
	store := newMockStore()
	store.plans[1] = &plans.Plan{
		ID: 1, Title: "Savings Drive", FiscalMonth: 12, FiscalYear: 2017,
		Target: 750, Status: plans.StatusArchived,
	}
	store.nextID = 2
	engine := newTestEngine(store)

	now := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.CheckAndRenew(context.Background(), now))

	p := store.activePlan(t)
	assert.Equal(t, "Savings Drive", p.Title)
	assert.Equal(t, 750.0, p.Target)
	assert.Equal(t, 2, p.FiscalMonth)
	assert.Equal(t, 2018, p.FiscalYear)
}

func TestCheckAndRenewIsIdempotentBeforeDeadline(t *testing.T) {
	store := newMockStore()
	store.branchUsers = []int64{10}
	engine := newTestEngine(store)

	now := time.Date(2025, time.September, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, engine.CheckAndRenew(context.Background(), now))
	first := store.activePlan(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, engine.CheckAndRenew(context.Background(), now.Add(time.Duration(i)*time.Hour)))
	}

	assert.Len(t, store.plans, 1)
	assert.Len(t, store.stubs, 1)
	assert.Equal(t, first.ID, store.activePlan(t).ID)
}

func TestCheckAndRenewRollsOverPastDeadline(t *testing.T) {
	store := newMockStore()
	store.branchUsers = []int64{10, 11}
	engine := newTestEngine(store)

	inPeriod := time.Date(2025, time.September, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, engine.CheckAndRenew(context.Background(), inPeriod))
	first := store.activePlan(t)
	first.Target = 500
	store.plans[first.ID].Target = 500

	pastDeadline := time.Date(2025, time.September, 19, 1, 0, 0, 0, time.UTC)
	require.NoError(t, engine.CheckAndRenew(context.Background(), pastDeadline))

	next := store.activePlan(t)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Equal(t, 2, next.FiscalMonth)
	assert.Equal(t, 2018, next.FiscalYear)
	assert.Equal(t, 500.0, next.Target)
	assert.Equal(t, plans.StatusArchived, store.plans[first.ID].Status)
	assert.Len(t, store.stubs, 4)
}

func TestCheckAndRenewWrapsFiscalYear(t *testing.T) {
	store := newMockStore()
	store.plans[1] = &plans.Plan{
		ID: 1, Title: defaultTitle, FiscalMonth: 12, FiscalYear: 2017,
		Target:   300,
		Deadline: period.DeadlineFor(period.Period{Month: 12, Year: 2017}),
		Status:   plans.StatusActive,
	}
	store.nextID = 2
	engine := newTestEngine(store)

	now := store.plans[1].Deadline.Add(time.Hour)
	require.NoError(t, engine.CheckAndRenew(context.Background(), now))

	next := store.activePlan(t)
	assert.Equal(t, 1, next.FiscalMonth)
	assert.Equal(t, 2018, next.FiscalYear)
	assert.Equal(t, 300.0, next.Target)
}

func TestCheckAndRenewRollsBackOnFailure(t *testing.T) {
	store := newMockStore()
	store.plans[1] = &plans.Plan{
		ID: 1, FiscalMonth: 3, FiscalYear: 2018,
		Deadline: period.DeadlineFor(period.Period{Month: 3, Year: 2018}),
		Status:   plans.StatusActive,
	}
	store.nextID = 2
	store.failCreate = true
	engine := newTestEngine(store)

	now := store.plans[1].Deadline.Add(time.Hour)
	err := engine.CheckAndRenew(context.Background(), now)
	require.Error(t, err)

	// The archive must have been rolled back with the failed create.
	assert.Equal(t, plans.StatusActive, store.plans[1].Status)
	assert.Len(t, store.plans, 1)
}
