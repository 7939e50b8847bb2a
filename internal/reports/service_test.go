package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekid-reports/ekid/internal/shared"
)

type mockRepo struct {
	reports    map[int64]*Report
	activities map[int64]struct {
		planID int64
		target float64
	}
	entries []ActivityEntry
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		reports: map[int64]*Report{},
		activities: map[int64]struct {
			planID int64
			target float64
		}{},
		nextID: 1,
	}
}

func (m *mockRepo) FindWithPlan(_ context.Context, id int64) (*Report, error) {
	rep, ok := m.reports[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (m *mockRepo) FindForUserAndPlan(_ context.Context, userID, planID int64) (*Report, error) {
	for _, rep := range m.reports {
		if rep.UserID == userID && rep.PlanID == planID {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepo) ListForUser(_ context.Context, userID int64) ([]Report, error) {
	var out []Report
	for _, rep := range m.reports {
		if rep.UserID == userID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByPlan(_ context.Context, planID int64) ([]Report, error) {
	var out []Report
	for _, rep := range m.reports {
		if rep.PlanID == planID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateSubmission(_ context.Context, id int64, achieved, percentage float64, notes string, status Status, submittedAt time.Time) (*Report, error) {
	rep, ok := m.reports[id]
	if !ok || rep.Status != StatusPending {
		return nil, shared.ErrConflict
	}
	rep.Achieved = achieved
	rep.Percentage = percentage
	rep.Notes = notes
	rep.Status = status
	rep.SubmittedAt = &submittedAt
	cp := *rep
	return &cp, nil
}

func (m *mockRepo) FindActivity(_ context.Context, id int64) (int64, float64, error) {
	a, ok := m.activities[id]
	if !ok {
		return 0, 0, shared.ErrNotFound
	}
	return a.planID, a.target, nil
}

func (m *mockRepo) CreateActivityEntry(_ context.Context, reportID, activityID int64, achieved, percentage float64) (*ActivityEntry, error) {
	for _, e := range m.entries {
		if e.ReportID == reportID && e.ActivityID == activityID {
			return nil, shared.ErrConflict
		}
	}
	e := ActivityEntry{
		ID:         m.nextID,
		ReportID:   reportID,
		ActivityID: activityID,
		Achieved:   achieved,
		Percentage: percentage,
	}
	m.nextID++
	m.entries = append(m.entries, e)
	return &e, nil
}

func (m *mockRepo) ListActivityEntries(_ context.Context, reportID int64) ([]ActivityEntry, error) {
	var out []ActivityEntry
	for _, e := range m.entries {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) addPending(userID int64, target float64, deadline time.Time) int64 {
	id := m.nextID
	m.nextID++
	m.reports[id] = &Report{
		ID:           id,
		PlanID:       100,
		UserID:       userID,
		Status:       StatusPending,
		PlanTarget:   target,
		PlanDeadline: deadline,
	}
	return id
}

func newTestService(repo *mockRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubmitPercentage(t *testing.T) {
	deadline := time.Date(2025, time.September, 18, 23, 59, 59, 0, time.UTC)
	before := deadline.Add(-time.Hour)

	tests := []struct {
		name     string
		target   float64
		achieved float64
		wantPct  float64
	}{
		{"half of target", 500, 250, 50},
		{"full target", 500, 500, 100},
		{"over target stays unclamped", 100, 150, 150},
		{"zero target yields zero", 0, 40, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			id := repo.addPending(7, tc.target, deadline)
			svc := newTestService(repo, before)

			rep, err := svc.Submit(context.Background(), 7, id, SubmitInput{Achieved: tc.achieved})
			require.NoError(t, err)
			assert.InDelta(t, tc.wantPct, rep.Percentage, 1e-9)
			assert.Equal(t, StatusSubmitted, rep.Status)
		})
	}
}

func TestSubmitLateness(t *testing.T) {
	deadline := time.Date(2025, time.September, 18, 23, 59, 59, 0, time.UTC)

	t.Run("exactly at deadline is on time", func(t *testing.T) {
		repo := newMockRepo()
		id := repo.addPending(7, 100, deadline)
		svc := newTestService(repo, deadline)

		rep, err := svc.Submit(context.Background(), 7, id, SubmitInput{Achieved: 10})
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, rep.Status)
	})

	t.Run("one second past deadline is late", func(t *testing.T) {
		repo := newMockRepo()
		id := repo.addPending(7, 100, deadline)
		svc := newTestService(repo, deadline.Add(time.Second))

		rep, err := svc.Submit(context.Background(), 7, id, SubmitInput{Achieved: 10})
		require.NoError(t, err)
		assert.Equal(t, StatusLate, rep.Status)
		require.NotNil(t, rep.SubmittedAt)
	})
}

func TestSubmitRejectsResubmission(t *testing.T) {
	deadline := time.Date(2025, time.October, 18, 23, 59, 59, 0, time.UTC)
	repo := newMockRepo()
	id := repo.addPending(7, 100, deadline)
	svc := newTestService(repo, deadline.Add(-time.Hour))

	_, err := svc.Submit(context.Background(), 7, id, SubmitInput{Achieved: 80})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 7, id, SubmitInput{Achieved: 90})
	require.ErrorIs(t, err, shared.ErrConflict)

	rep, err := repo.FindWithPlan(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 80.0, rep.Achieved)
}

func TestSubmitHidesForeignReports(t *testing.T) {
	deadline := time.Date(2025, time.October, 18, 23, 59, 59, 0, time.UTC)
	repo := newMockRepo()
	id := repo.addPending(7, 100, deadline)
	svc := newTestService(repo, deadline.Add(-time.Hour))

	_, err := svc.Submit(context.Background(), 8, id, SubmitInput{Achieved: 80})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitValidatesInput(t *testing.T) {
	deadline := time.Date(2025, time.October, 18, 23, 59, 59, 0, time.UTC)
	repo := newMockRepo()
	id := repo.addPending(7, 100, deadline)
	svc := newTestService(repo, deadline.Add(-time.Hour))

	_, err := svc.Submit(context.Background(), 7, id, SubmitInput{Achieved: -5})
	require.Error(t, err)
}

func TestSubmitActivityClampsPercentage(t *testing.T) {
	deadline := time.Date(2025, time.October, 18, 23, 59, 59, 0, time.UTC)
	repo := newMockRepo()
	id := repo.addPending(7, 100, deadline)
	repo.activities[55] = struct {
		planID int64
		target float64
	}{planID: 100, target: 10}
	svc := newTestService(repo, deadline.Add(-time.Hour))

	entry, err := svc.SubmitActivity(context.Background(), 7, id, 55, 25)
	require.NoError(t, err)
	assert.Equal(t, 100.0, entry.Percentage)
	assert.Equal(t, 25.0, entry.Achieved)

	_, err = svc.SubmitActivity(context.Background(), 7, id, 55, 5)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestSubmitActivityRejectsWrongPlan(t *testing.T) {
	deadline := time.Date(2025, time.October, 18, 23, 59, 59, 0, time.UTC)
	repo := newMockRepo()
	id := repo.addPending(7, 100, deadline)
	repo.activities[55] = struct {
		planID int64
		target float64
	}{planID: 999, target: 10}
	svc := newTestService(repo, deadline.Add(-time.Hour))

	_, err := svc.SubmitActivity(context.Background(), 7, id, 55, 5)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
