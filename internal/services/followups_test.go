package services

import (
	"testing"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) followUp(t *testing.T, clientID uint, title string, offset int, p models.Priority) *models.FollowUp {
	t.Helper()
	fu, err := f.svc.FollowUps.Create(f.ctx, f.owner, FollowUpInput{
		ClientID: clientID, Title: title, Priority: p, ScheduledDate: day(offset),
	})
	require.NoError(t, err)
	return fu
}

func TestFollowUpCreate_DefaultsAndValidation(t *testing.T) {
	f := setup(t)
	c := f.client(t, "acme")

	fu := f.followUp(t, c.ID, "Llamar", 1, "")
	assert.Equal(t, models.PriorityMedium, fu.Priority)
	assert.Equal(t, models.FollowUpCall, fu.Kind)

	_, err := f.svc.FollowUps.Create(f.ctx, f.owner, FollowUpInput{ClientID: c.ID, Priority: "urgent"})
	v := violations(t, err)
	assert.Equal(t, "required", v["title"])
	assert.Equal(t, "invalid_choice", v["priority"])
	assert.Equal(t, "required", v["scheduled_date"])
}

func TestFollowUpComplete_Idempotent(t *testing.T) {
	f := setup(t)
	c := f.client(t, "acme")
	fu := f.followUp(t, c.ID, "Llamar", 0, models.PriorityHigh)

	for i := 0; i < 2; i++ {
		got, err := f.svc.FollowUps.Complete(f.ctx, f.owner, fu.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)
		require.NotNil(t, got.CompletedAt)
	}
	assert.Equal(t, int64(1), f.countLogs(t, models.ActionCompleted, models.SubjectFollowUp))

	_, err := f.svc.FollowUps.Complete(f.ctx, f.other, fu.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFollowUpUpdate_ToggleClearsCompletedAt(t *testing.T) {
	f := setup(t)
	c := f.client(t, "acme")
	fu := f.followUp(t, c.ID, "Llamar", 0, models.PriorityLow)

	in := FollowUpInput{Title: "Llamar", Priority: models.PriorityLow, ScheduledDate: day(0), Completed: true}
	got, err := f.svc.FollowUps.Update(f.ctx, f.owner, fu.ID, in)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)

	in.Completed = false
	got, err = f.svc.FollowUps.Update(f.ctx, f.owner, fu.ID, in)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestFollowUpPending_WindowAndOrder(t *testing.T) {
	f := setup(t)
	c := f.client(t, "acme")
	f.followUp(t, c.ID, "tarde", 7, models.PriorityLow)
	f.followUp(t, c.ID, "fuera", 8, models.PriorityHigh)
	f.followUp(t, c.ID, "vencido", -2, models.PriorityLow)
	f.followUp(t, c.ID, "pronto-bajo", 3, models.PriorityLow)
	f.followUp(t, c.ID, "pronto-alto", 3, models.PriorityHigh)
	done := f.followUp(t, c.ID, "hecho", 0, models.PriorityHigh)
	_, err := f.svc.FollowUps.Complete(f.ctx, f.owner, done.ID)
	require.NoError(t, err)

	got, err := f.svc.FollowUps.Pending(f.ctx, f.owner)
	require.NoError(t, err)
	titles := make([]string, len(got))
	for i, fu := range got {
		titles[i] = fu.Title
	}
	assert.Equal(t, []string{"vencido", "pronto-alto", "pronto-bajo", "tarde"}, titles)

	other, err := f.svc.FollowUps.Pending(f.ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFollowUpList_StatusFilter(t *testing.T) {
	f := setup(t)
	c := f.client(t, "acme")
	f.followUp(t, c.ID, "hoy", 0, models.PriorityLow)
	f.followUp(t, c.ID, "ayer", -1, models.PriorityLow)
	f.followUp(t, c.ID, "mañana", 1, models.PriorityLow)

	page, err := f.svc.FollowUps.List(f.ctx, f.owner, query.FollowUpFilter{Status: models.FollowUpOverdue})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "ayer", page.Data[0].Title)
}
