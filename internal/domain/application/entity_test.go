package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	app, err := NewApplication(NewApplicationParams{
		ID:            "00000000-0000-0000-0000-000000000001",
		StudentID:     "student-1",
		InstitutionID: "inst-1",
		CourseID:      "course-1",
		Now:           time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return app
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, StatusPending, app.Status)
	assert.Equal(t, app.AppliedAt, app.CreatedAt)
	assert.Nil(t, app.ReviewedAt)
	assert.Nil(t, app.AcceptedAt)
	assert.Nil(t, app.DeclinedAt)
}

func TestNewApplication_RequiresIDs(t *testing.T) {
	_, err := NewApplication(NewApplicationParams{
		StudentID:     "student-1",
		InstitutionID: "inst-1",
		CourseID:      "course-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewApplication(NewApplicationParams{
		ID:            "00000000-0000-0000-0000-000000000001",
		InstitutionID: "inst-1",
		CourseID:      "course-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusAdmitted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusAccepted, false},
		{StatusPending, StatusDeclined, false},
		{StatusAdmitted, StatusAccepted, true},
		{StatusAdmitted, StatusDeclined, true},
		{StatusAdmitted, StatusRejected, false},
		{StatusAdmitted, StatusPending, false},
		{StatusAccepted, StatusDeclined, false},
		{StatusDeclined, StatusAdmitted, false},
		{StatusRejected, StatusAdmitted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAdmitted.IsTerminal())
	assert.True(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusDeclined.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestTransition_StampsTimestamps(t *testing.T) {
	app := newTestApplication(t)

	reviewedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, app.Transition(StatusAdmitted, reviewedAt))
	require.NotNil(t, app.ReviewedAt)
	assert.Equal(t, reviewedAt, *app.ReviewedAt)
	assert.Equal(t, reviewedAt, app.UpdatedAt)
	assert.Nil(t, app.AcceptedAt)

	acceptedAt := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, app.Transition(StatusAccepted, acceptedAt))
	require.NotNil(t, app.AcceptedAt)
	assert.Equal(t, acceptedAt, *app.AcceptedAt)
}

func TestTransition_Rejects(t *testing.T) {
	app := newTestApplication(t)
	now := time.Now().UTC()

	// Skipping review is not allowed.
	err := app.Transition(StatusAccepted, now)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Equal(t, StatusPending, app.Status)

	// Unknown status.
	err = app.Transition(Status("enrolled"), now)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	// Terminal states are final.
	require.NoError(t, app.Transition(StatusRejected, now))
	err = app.Transition(StatusAdmitted, now)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestStatusStudentVisible(t *testing.T) {
	assert.False(t, StatusPending.StudentVisible())
	assert.True(t, StatusAdmitted.StudentVisible())
	assert.True(t, StatusRejected.StudentVisible())
	assert.True(t, StatusAccepted.StudentVisible())
	assert.True(t, StatusDeclined.StudentVisible())
}

func TestBelongsTo(t *testing.T) {
	app := newTestApplication(t)
	assert.True(t, app.BelongsTo("student-1"))
	assert.False(t, app.BelongsTo("student-2"))
}

func TestIsAdmittedOffer(t *testing.T) {
	app := newTestApplication(t)
	assert.False(t, app.IsAdmittedOffer())

	require.NoError(t, app.Transition(StatusAdmitted, time.Now().UTC()))
	assert.True(t, app.IsAdmittedOffer())
}
