// Package services implements the CRM use cases. Every method takes the
// acting user explicitly; ownership is checked through the gate before any
// mutation, and each mutation shares one transaction with its activity entry.
package services

import (
	"context"
	"time"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/policy"
	"gorm.io/gorm"
)

// Actor is the authenticated user on whose behalf a use case runs.
type Actor struct {
	ID uint
}

// Deps are the collaborators shared by every service.
type Deps struct {
	DB      *gorm.DB
	Clock   clock.Clock
	Gate    *gate.Gate[uint]
	Metrics *metrics.Metrics
}

type base struct {
	db       *gorm.DB
	clock    clock.Clock
	gate     *gate.Gate[uint]
	recorder *Recorder
}

func newBase(d Deps) base {
	g := d.Gate
	if g == nil {
		g = policy.NewGate()
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.Real(time.UTC)
	}
	return base{db: d.DB, clock: clk, gate: g, recorder: NewRecorder(d.Metrics)}
}

func (b base) now() time.Time   { return b.clock.Now().UTC() }
func (b base) today() time.Time { return clock.Today(b.clock) }

func (b base) authorize(ctx context.Context, actor Actor, action gate.Action, kind string, resource any) error {
	return forbidden(b.gate.Authorize(ctx, actor.ID, action, kind, resource))
}

// tx runs fn in one transaction and counts its activity entries after commit.
func (b base) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var recorded []Entry
	ctx = context.WithValue(ctx, pendingKey{}, &recorded)
	if err := b.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	b.recorder.observe(recorded...)
	return nil
}

// Services bundles every use case for the HTTP layer.
type Services struct {
	Clients   *ClientService
	Notes     *NoteService
	FollowUps *FollowUpService
	Proposals *ProposalService
	Projects  *ProjectService
	Dashboard *DashboardService
	Activity  *ActivityService
	Leads     *LeadService
	Users     *UserService
}

func New(d Deps, mailer Mailer, publicURL string) *Services {
	return &Services{
		Clients:   NewClientService(d),
		Notes:     NewNoteService(d),
		FollowUps: NewFollowUpService(d),
		Proposals: NewProposalService(d),
		Projects:  NewProjectService(d),
		Dashboard: NewDashboardService(d),
		Activity:  NewActivityService(d),
		Leads:     NewLeadService(d, mailer, publicURL),
		Users:     NewUserService(d),
	}
}
