package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/db/dbtest"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Tuesday 2026-03-10, 09:00 UTC.
var today = dbtest.Date(2026, 3, 10)

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	clk   *clock.Mock
	svc   *Services
	mail  *fakeMailer
	owner Actor
	other Actor
}

type fakeMailer struct {
	to, link string
	err      error
	sent     int
}

func (m *fakeMailer) SendLeadVerification(_ context.Context, to, link string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.link = to, link
	m.sent++
	return nil
}

func setup(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewMock(today.Add(9 * time.Hour))
	gdb := dbtest.Open(t, clk)
	owner := dbtest.User(t, gdb, "owner@test.io")
	other := dbtest.User(t, gdb, "other@test.io")
	mail := &fakeMailer{}
	svc := New(Deps{DB: gdb, Clock: clk, Metrics: metrics.New(nil)}, mail, "https://crm.test/")
	return &fixture{
		ctx: context.Background(), db: gdb, clk: clk, svc: svc, mail: mail,
		owner: Actor{ID: owner.ID}, other: Actor{ID: other.ID},
	}
}

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func (f *fixture) client(t *testing.T, name string) *models.Client {
	t.Helper()
	c, err := f.svc.Clients.Create(f.ctx, f.owner, ClientInput{Name: name, Email: name + "@client.io"})
	require.NoError(t, err)
	return c
}

func (f *fixture) proposal(t *testing.T, clientID uint, title string, price float64) *models.Proposal {
	t.Helper()
	p, err := f.svc.Proposals.Create(f.ctx, f.owner, ProposalInput{
		ClientID: clientID, Title: title, TotalPrice: price, ResponseDeadline: day(10),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) countLogs(t *testing.T, action models.ActivityAction, subject models.SubjectType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.ActivityLog{}).
		Where("action = ? AND subject_type = ?", action, subject).Count(&n).Error)
	return n
}

func violations(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Violations
}
