package plans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekid-reports/ekid/internal/shared"
)

type mockRepo struct {
	active     *Plan
	activities map[int64][]Activity
	nextID     int64
}

func newPlanMockRepo() *mockRepo {
	return &mockRepo{activities: map[int64][]Activity{}, nextID: 1}
}

func (m *mockRepo) FindActive(context.Context) (*Plan, error) {
	if m.active == nil {
		return nil, shared.ErrNotFound
	}
	cp := *m.active
	return &cp, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Plan, error) {
	if m.active != nil && m.active.ID == id {
		cp := *m.active
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepo) ListArchived(context.Context) ([]Plan, error) {
	return nil, nil
}

func (m *mockRepo) UpdateTarget(_ context.Context, id int64, target float64) (*Plan, error) {
	if m.active == nil || m.active.ID != id {
		return nil, shared.ErrNotFound
	}
	m.active.Target = target
	cp := *m.active
	return &cp, nil
}

func (m *mockRepo) ListActivities(_ context.Context, planID int64) ([]Activity, error) {
	return m.activities[planID], nil
}

func (m *mockRepo) CreateActivity(_ context.Context, planID int64, in CreateActivityInput) (*Activity, error) {
	a := Activity{ID: m.nextID, PlanID: planID, Title: in.Title, Target: in.Target}
	m.nextID++
	m.activities[planID] = append(m.activities[planID], a)
	return &a, nil
}

// creatingRenewer materializes a plan on its first check, the way the real
// engine does when the table is empty.
type creatingRenewer struct {
	repo  *mockRepo
	calls int
}

func (r *creatingRenewer) CheckAndRenew(context.Context, time.Time) error {
	r.calls++
	if r.repo.active == nil {
		r.repo.active = &Plan{ID: 1, Title: "Monthly Plan", FiscalMonth: 1, FiscalYear: 2018, Status: StatusActive}
	}
	return nil
}

func TestGetCurrentMaterializesMissingPlan(t *testing.T) {
	repo := newPlanMockRepo()
	renewer := &creatingRenewer{repo: repo}
	svc := NewService(repo, renewer)

	plan, err := svc.GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, renewer.calls)
	assert.Equal(t, StatusActive, plan.Status)

	// A second read finds the plan without another renewal check.
	_, err = svc.GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, renewer.calls)
}

func TestUpdateTargetRejectsNegative(t *testing.T) {
	repo := newPlanMockRepo()
	repo.active = &Plan{ID: 1, Status: StatusActive}
	svc := NewService(repo, &creatingRenewer{repo: repo})

	_, err := svc.UpdateTarget(context.Background(), -10)
	require.ErrorIs(t, err, shared.ErrValidation)

	plan, err := svc.UpdateTarget(context.Background(), 1200)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, plan.Target)
}

func TestAddActivityValidates(t *testing.T) {
	repo := newPlanMockRepo()
	repo.active = &Plan{ID: 1, Status: StatusActive}
	svc := NewService(repo, &creatingRenewer{repo: repo})

	_, err := svc.AddActivity(context.Background(), CreateActivityInput{Title: ""})
	require.ErrorIs(t, err, shared.ErrValidation)

	a, err := svc.AddActivity(context.Background(), CreateActivityInput{Title: "Door-to-door outreach", Target: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.PlanID)
}
