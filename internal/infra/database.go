package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cashdesk/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies the partial unique indexes GORM cannot
// express. enforceOperatorSession additionally creates the index backing the
// one-open-session-per-operator policy.
func NewDatabase(dsn string, enforceOperatorSession bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db, enforceOperatorSession); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests
// against a throwaway database.
func RunMigrations(db *gorm.DB, enforceOperatorSession bool) error {
	if err := db.AutoMigrate(
		&model.Operator{},
		&model.CashRegister{},
		&model.PaymentMethod{},
		&model.CashSession{},
		&model.CashTransaction{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db, enforceOperatorSession)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle. The
// partial unique index on open sessions is what makes openSession an atomic
// check-and-insert: two concurrent opens for one register cannot both commit.
func applySchemaPatches(db *gorm.DB, enforceOperatorSession bool) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cash_sessions_open_register
		     ON cash_sessions (register_id)
		     WHERE status = 'open'`,
	}
	if enforceOperatorSession {
		patches = append(patches,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_cash_sessions_open_operator
			     ON cash_sessions (operator_id)
			     WHERE status = 'open'`)
	} else {
		// Policy disabled — drop the index so opens are not rejected by a
		// leftover constraint from a previous configuration.
		patches = append(patches,
			`DROP INDEX IF EXISTS ux_cash_sessions_open_operator`)
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
