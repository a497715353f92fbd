package services

import (
	"context"
	"math"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/query"
	"gorm.io/gorm"
)

const (
	ExpiringWindowDays = 7
	RecentActivityDays = 7
)

type Counters struct {
	ActiveClients       int64   `json:"active_clients"`
	OpenProposals       int64   `json:"open_proposals"`
	OpenProposalsValue  float64 `json:"open_proposals_value"`
	ActiveProjects      int64   `json:"active_projects"`
	ActiveProjectsValue float64 `json:"active_projects_value"`
	PendingFollowUps    int64   `json:"pending_follow_ups"`
}

// MonthlyKPIs cover the calendar month containing today.
type MonthlyKPIs struct {
	SalesThisMonth   float64 `json:"sales_this_month"`
	ProposalsCreated int64   `json:"proposals_created"`
	ClientsCreated   int64   `json:"clients_created"`
	Approved         int64   `json:"approved"`
	Rejected         int64   `json:"rejected"`
	CloseRate        float64 `json:"close_rate"`
}

type Dashboard struct {
	Today             []models.FollowUp    `json:"today"`
	Overdue           []models.FollowUp    `json:"overdue"`
	ExpiringProposals []models.Proposal    `json:"expiring_proposals"`
	Counters          Counters             `json:"counters"`
	Monthly           MonthlyKPIs          `json:"monthly"`
	RecentActivity    []models.ActivityLog `json:"recent_activity"`
}

type DashboardService struct {
	base
	activity *ActivityService
}

func NewDashboardService(d Deps) *DashboardService {
	return &DashboardService{base: newBase(d), activity: NewActivityService(d)}
}

type aggregate struct {
	Count int64
	Total float64
}

func sumPrice(q *gorm.DB) (aggregate, error) {
	var a aggregate
	err := q.Select("COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS total").Scan(&a).Error
	return a, err
}

// CloseRate is approved/(approved+rejected) as a percentage rounded to one
// decimal, 0 when nothing was resolved.
func CloseRate(approved, rejected int64) float64 {
	if approved+rejected == 0 {
		return 0
	}
	return math.Round(float64(approved)/float64(approved+rejected)*1000) / 10
}

// Build computes every dashboard section for the actor. It only reads.
func (s *DashboardService) Build(ctx context.Context, actor Actor) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	today := s.today()
	tomorrow := today.AddDate(0, 0, 1)
	out := &Dashboard{}

	followUps := func() *gorm.DB {
		return db.Model(&models.FollowUp{}).Preload("Client").
			Where("follow_ups.user_id = ? AND follow_ups.completed = ?", actor.ID, false)
	}
	if err := followUps().
		Where("follow_ups.scheduled_date >= ? AND follow_ups.scheduled_date < ?", today, tomorrow).
		Order(query.PriorityRankSQL + " DESC").Order("follow_ups.created_at ASC").
		Find(&out.Today).Error; err != nil {
		return nil, err
	}
	if err := followUps().
		Where("follow_ups.scheduled_date < ?", today).
		Order("follow_ups.scheduled_date ASC").
		Find(&out.Overdue).Error; err != nil {
		return nil, err
	}

	open := []models.ProposalStatus{models.ProposalSent, models.ProposalNegotiation}
	if err := db.Preload("Client").
		Where("user_id = ? AND status IN ?", actor.ID, open).
		Where("response_deadline >= ? AND response_deadline < ?", today, today.AddDate(0, 0, ExpiringWindowDays+1)).
		Order("response_deadline ASC").
		Find(&out.ExpiringProposals).Error; err != nil {
		return nil, err
	}

	c := &out.Counters
	if err := db.Model(&models.Client{}).Where("user_id = ? AND status = ?", actor.ID, models.ClientActive).Count(&c.ActiveClients).Error; err != nil {
		return nil, err
	}
	agg, err := sumPrice(db.Model(&models.Proposal{}).Where("user_id = ? AND status IN ?", actor.ID, open))
	if err != nil {
		return nil, err
	}
	c.OpenProposals, c.OpenProposalsValue = agg.Count, agg.Total
	active := []models.ProjectStatus{models.ProjectNotStarted, models.ProjectInProgress}
	agg, err = sumPrice(db.Model(&models.Project{}).Where("user_id = ? AND status IN ?", actor.ID, active))
	if err != nil {
		return nil, err
	}
	c.ActiveProjects, c.ActiveProjectsValue = agg.Count, agg.Total
	if err := db.Model(&models.FollowUp{}).Where("user_id = ? AND completed = ?", actor.ID, false).Count(&c.PendingFollowUps).Error; err != nil {
		return nil, err
	}

	if out.Monthly, err = s.monthly(db, actor); err != nil {
		return nil, err
	}
	if out.RecentActivity, err = s.activity.Recent(ctx, actor, RecentActivityDays); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) monthly(db *gorm.DB, actor Actor) (MonthlyKPIs, error) {
	var k MonthlyKPIs
	start, end := clock.MonthRange(s.clock)
	inMonth := func(column string) (string, []any) {
		return column + " >= ? AND " + column + " < ?", []any{start, end}
	}

	cond, args := inMonth("updated_at")
	approved, err := sumPrice(db.Model(&models.Proposal{}).Where("user_id = ? AND status = ?", actor.ID, models.ProposalApproved).Where(cond, args...))
	if err != nil {
		return k, err
	}
	k.SalesThisMonth, k.Approved = approved.Total, approved.Count
	if err := db.Model(&models.Proposal{}).Where("user_id = ? AND status = ?", actor.ID, models.ProposalRejected).Where(cond, args...).Count(&k.Rejected).Error; err != nil {
		return k, err
	}

	cond, args = inMonth("created_at")
	if err := db.Model(&models.Proposal{}).Where("user_id = ?", actor.ID).Where(cond, args...).Count(&k.ProposalsCreated).Error; err != nil {
		return k, err
	}
	if err := db.Model(&models.Client{}).Where("user_id = ?", actor.ID).Where(cond, args...).Count(&k.ClientsCreated).Error; err != nil {
		return k, err
	}
	k.CloseRate = CloseRate(k.Approved, k.Rejected)
	return k, nil
}
