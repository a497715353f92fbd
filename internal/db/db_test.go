package db

import (
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	clk := clock.NewMock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), GormConfig(clk, false))
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := d.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	d := openSQLite(t)
	if err := AutoMigrate(d); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	for _, table := range []string{"follow_ups", "project_tasks", "activity_logs", "leads"} {
		if !d.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if !d.Migrator().HasColumn(&models.ProjectTask{}, "sort_order") {
		t.Fatalf("task order must be stored as sort_order")
	}
}

func TestNowFuncUsesClock(t *testing.T) {
	d := openSQLite(t)
	if err := AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	u := models.User{Email: "a@b.c", Password: "x"}
	if err := d.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	if !u.CreatedAt.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at = %v", u.CreatedAt)
	}
}

func TestSeedIdempotent(t *testing.T) {
	d := openSQLite(t)
	if err := AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d, " Admin@Example.com ", "secret"); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d, "admin@example.com", "other"); err != nil {
		t.Fatal(err)
	}
	var users []models.User
	d.Find(&users)
	if len(users) != 1 || users[0].Email != "admin@example.com" {
		t.Fatalf("expected one seeded user, got %+v", users)
	}
	if bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("secret")) != nil {
		t.Fatalf("password not hashed with bcrypt")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"clients", "proposals", "projects", "project_tasks", "activity_logs", "leads"} {
		if !strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("up migration missing %s", table)
		}
	}
	if _, err := migrationsFS.ReadFile("migrations/000001_init.down.sql"); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  'host=db  user=u dbname=x' ", "host=db user=u dbname=x sslmode=disable"},
		{"postgres://u:p@db:5432/x", "postgres://u:p@db:5432/x"},
		{"host=db user=u dbname=x sslmode=require", "host=db user=u dbname=x sslmode=require"},
	}
	for _, tt := range tests {
		if got := NormalizeDSN(tt.in); got != tt.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToURLDSNAndMask(t *testing.T) {
	url := ToURLDSN("host=db port=5432 user=u password=p dbname=x sslmode=disable")
	if url != "postgres://u:p@db:5432/x?sslmode=disable" {
		t.Fatalf("got %q", url)
	}
	if m := MaskDSN(url); strings.Contains(m, ":p@") {
		t.Fatalf("password leaked: %q", m)
	}
	if m := MaskDSN("host=db password=secret dbname=x"); m != "host=db password=*** dbname=x" {
		t.Fatalf("got %q", m)
	}
}
