// Package db opens the database, applies the schema and seeds a first user.
package db

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/logging"
	migrate "github.com/golang-migrate/migrate/v4"
	// registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Client{},
		&models.Note{},
		&models.FollowUp{},
		&models.Proposal{},
		&models.Project{},
		&models.ProjectTask{},
		&models.ActivityLog{},
		&models.Lead{},
	}
}

// GormConfig wires the clock into gorm's timestamps.
func GormConfig(clk clock.Clock, debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return clk.Now().UTC() },
	}
}

// Connect opens postgres with retries, applies the schema and optionally seeds.
func Connect(cfg *config.Config, clk clock.Clock, log *logging.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.Database.DSN())
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}
	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < 10; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), GormConfig(clk, cfg.Database.Debug))
		if err == nil {
			break
		}
		log.Warn("retrying db connection", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after retries: %w", err)
	}
	if err := gdb.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info("database connected", "dsn", MaskDSN(dsn))

	if cfg.App.Migrations {
		if err := RunSQLMigrations(ToURLDSN(dsn)); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
	} else if err := AutoMigrate(gdb); err != nil {
		return nil, err
	}
	if cfg.App.Seed {
		if err := Seed(gdb, cfg.App.SeedEmail, cfg.App.SeedPassword); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return gdb, nil
}

// AutoMigrate is the development fallback when MIGRATIONS is off.
func AutoMigrate(gdb *gorm.DB) error {
	for _, m := range Models() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"users", "clients", "proposals", "projects"} {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded SQL migrations. url must be URL form.
func RunSQLMigrations(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
