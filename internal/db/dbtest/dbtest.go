// Package dbtest opens isolated in-memory SQLite databases for tests.
package dbtest

import (
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated database private to t whose timestamps follow clk.
func Open(t *testing.T, clk clock.Clock) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), db.GormConfig(clk, false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive for the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// User inserts an operator with the given email.
func User(t *testing.T, gdb *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Name: email, Password: "x"}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Client inserts an active client owned by userID.
func Client(t *testing.T, gdb *gorm.DB, userID uint, name, email string) models.Client {
	t.Helper()
	c := models.Client{UserID: userID, Name: name, Email: email, Status: models.ClientActive}
	if err := gdb.Create(&c).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
