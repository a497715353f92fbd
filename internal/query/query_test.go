package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/db/dbtest"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var today = dbtest.Date(2026, 3, 10)

func setup(t *testing.T) (*gorm.DB, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(today.Add(9 * time.Hour))
	return dbtest.Open(t, clk), clk
}

func TestClients_PaginatesByTen(t *testing.T) {
	gdb, clk := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	other := dbtest.User(t, gdb, "other@test.io")
	for i := 0; i < 12; i++ {
		clk.Advance(time.Minute)
		dbtest.Client(t, gdb, u.ID, fmt.Sprintf("Client %02d", i), fmt.Sprintf("c%d@test.io", i))
	}
	dbtest.Client(t, gdb, other.ID, "Foreign", "foreign@test.io")

	page, err := Clients(gdb, u.ID, ClientFilter{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, 10, page.PerPage)
	require.Len(t, page.Data, 2)
	// default order is created_at desc, so the oldest two land on page 2.
	assert.Equal(t, "Client 01", page.Data[0].Name)
	assert.Equal(t, "Client 00", page.Data[1].Name)
}

func TestClients_SearchIsCaseInsensitiveOr(t *testing.T) {
	gdb, _ := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	c := dbtest.Client(t, gdb, u.ID, "Ana", "ana@test.io")
	gdb.Model(&c).Update("company", "ACME Corp")
	dbtest.Client(t, gdb, u.ID, "Bruno", "bruno@test.io")

	page, err := Clients(gdb, u.ID, ClientFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ana", page.Data[0].Name)

	page, err = Clients(gdb, u.ID, ClientFilter{Search: "BRUNO@"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
}

func TestUnknownSortFieldFallsBack(t *testing.T) {
	gdb, clk := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	dbtest.Client(t, gdb, u.ID, "Zed", "z@test.io")
	clk.Advance(time.Hour)
	dbtest.Client(t, gdb, u.ID, "Amy", "a@test.io")

	page, err := Clients(gdb, u.ID, ClientFilter{Sort: Sort{Field: "malicious_column; DROP TABLE clients", Order: "asc"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Amy", page.Data[0].Name, "falls back to created_at desc")

	page, err = Clients(gdb, u.ID, ClientFilter{Sort: Sort{Field: "name", Order: "asc"}})
	require.NoError(t, err)
	assert.Equal(t, "Amy", page.Data[0].Name)
	page, err = Clients(gdb, u.ID, ClientFilter{Sort: Sort{Field: "name", Order: "desc"}})
	require.NoError(t, err)
	assert.Equal(t, "Zed", page.Data[0].Name)
}

func seedProposals(t *testing.T, gdb *gorm.DB) uint {
	t.Helper()
	u := dbtest.User(t, gdb, "owner@test.io")
	acme := dbtest.Client(t, gdb, u.ID, "Acme", "acme@test.io")
	zulu := dbtest.Client(t, gdb, u.ID, "Zulu", "zulu@test.io")
	rows := []models.Proposal{
		{UserID: u.ID, ClientID: zulu.ID, Title: "Website Redesign", TotalPrice: 5000, Status: models.ProposalSent},
		{UserID: u.ID, ClientID: acme.ID, Title: "Mobile App", TotalPrice: 9000, Status: models.ProposalDraft},
		{UserID: u.ID, ClientID: acme.ID, Title: "SEO audit", TotalPrice: 800, Status: models.ProposalSent},
	}
	require.NoError(t, gdb.Create(&rows).Error)
	return u.ID
}

func TestProposals_FiltersCompose(t *testing.T) {
	gdb, _ := setup(t)
	uid := seedProposals(t, gdb)

	page, err := Proposals(gdb, uid, ProposalFilter{Status: models.ProposalSent, Client: "acm"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "SEO audit", page.Data[0].Title)
	require.NotNil(t, page.Data[0].Client)
	assert.Equal(t, "Acme", page.Data[0].Client.Name)
}

func TestProposals_SortByClientJoins(t *testing.T) {
	gdb, _ := setup(t)
	uid := seedProposals(t, gdb)

	page, err := Proposals(gdb, uid, ProposalFilter{Sort: Sort{Field: "client", Order: "desc"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Website Redesign", page.Data[0].Title)
	assert.Equal(t, int64(3), page.Total)

	page, err = Proposals(gdb, uid, ProposalFilter{Sort: Sort{Field: "total_price", Order: "asc"}})
	require.NoError(t, err)
	assert.Equal(t, "SEO audit", page.Data[0].Title)

	for _, field := range []string{"client ", " Client", "CLIENT"} {
		page, err = Proposals(gdb, uid, ProposalFilter{Sort: Sort{Field: field, Order: "desc"}})
		require.NoError(t, err, "field %q", field)
		require.Len(t, page.Data, 3)
		assert.Equal(t, "Website Redesign", page.Data[0].Title, "field %q", field)
	}
}

func TestProposals_DateRange(t *testing.T) {
	gdb, clk := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	c := dbtest.Client(t, gdb, u.ID, "Acme", "acme@test.io")
	require.NoError(t, gdb.Create(&models.Proposal{UserID: u.ID, ClientID: c.ID, Title: "old", Status: models.ProposalDraft}).Error)
	clk.Advance(48 * time.Hour)
	require.NoError(t, gdb.Create(&models.Proposal{UserID: u.ID, ClientID: c.ID, Title: "new", Status: models.ProposalDraft}).Error)

	from := today.AddDate(0, 0, 1)
	to := today.AddDate(0, 0, 2)
	page, err := Proposals(gdb, u.ID, ProposalFilter{DateRange: DateRange{From: &from, To: &to}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "new", page.Data[0].Title)
}

func TestFollowUps_DerivedStatusAndPrioritySort(t *testing.T) {
	gdb, _ := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	c := dbtest.Client(t, gdb, u.ID, "Acme", "acme@test.io")
	rows := []models.FollowUp{
		{UserID: u.ID, ClientID: c.ID, Title: "late", Priority: models.PriorityLow, Kind: models.FollowUpCall, ScheduledDate: today.AddDate(0, 0, -2)},
		{UserID: u.ID, ClientID: c.ID, Title: "now-low", Priority: models.PriorityLow, Kind: models.FollowUpCall, ScheduledDate: today},
		{UserID: u.ID, ClientID: c.ID, Title: "now-high", Priority: models.PriorityHigh, Kind: models.FollowUpEmail, ScheduledDate: today.Add(10 * time.Hour)},
		{UserID: u.ID, ClientID: c.ID, Title: "later", Priority: models.PriorityMedium, Kind: models.FollowUpMeeting, ScheduledDate: today.AddDate(0, 0, 3)},
		{UserID: u.ID, ClientID: c.ID, Title: "done", Priority: models.PriorityHigh, Kind: models.FollowUpCall, ScheduledDate: today.AddDate(0, 0, -1), Completed: true},
	}
	require.NoError(t, gdb.Create(&rows).Error)

	count := func(s models.FollowUpStatus) int {
		p, err := FollowUps(gdb, u.ID, FollowUpFilter{Status: s, Today: today})
		require.NoError(t, err)
		return len(p.Data)
	}
	assert.Equal(t, 1, count(models.FollowUpOverdue))
	assert.Equal(t, 2, count(models.FollowUpToday))
	assert.Equal(t, 1, count(models.FollowUpPending))
	assert.Equal(t, 1, count(models.FollowUpCompleted))

	page, err := FollowUps(gdb, u.ID, FollowUpFilter{Today: today, Sort: Sort{Field: "priority", Order: "desc"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 5)
	assert.Equal(t, models.PriorityHigh, page.Data[0].Priority)
	assert.Equal(t, models.PriorityLow, page.Data[4].Priority)

	page, err = FollowUps(gdb, u.ID, FollowUpFilter{Today: today, Kind: models.FollowUpEmail})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "now-high", page.Data[0].Title)
}

func TestProjects_StatusAndProgressPreload(t *testing.T) {
	gdb, _ := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	c := dbtest.Client(t, gdb, u.ID, "Acme", "acme@test.io")
	p := models.Project{UserID: u.ID, ClientID: c.ID, Name: "Build", Status: models.ProjectInProgress}
	require.NoError(t, gdb.Create(&p).Error)
	require.NoError(t, gdb.Create(&[]models.ProjectTask{
		{ProjectID: p.ID, Title: "a", Order: 1, Completed: true},
		{ProjectID: p.ID, Title: "b", Order: 2},
	}).Error)
	require.NoError(t, gdb.Create(&models.Project{UserID: u.ID, ClientID: c.ID, Name: "Idle", Status: models.ProjectPaused}).Error)

	page, err := Projects(gdb, u.ID, ProjectFilter{Status: models.ProjectInProgress})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 50, page.Data[0].Progress())
}

func TestEmptyPageHasLastPageOne(t *testing.T) {
	gdb, _ := setup(t)
	u := dbtest.User(t, gdb, "owner@test.io")
	page, err := Projects(gdb, u.ID, ProjectFilter{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.LastPage)
	assert.NotNil(t, page.Data)
}
