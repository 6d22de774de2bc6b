package infra

import (
	"fmt"

	"schoolpay/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (number sequences and the fee type seed rows).
func NewDatabase(dsn string) (*gorm.DB, error) {
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the SQL patches. Split out so
// integration tests can run it against their own database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Branch{},
		&model.Grade{},
		&model.Parent{},
		&model.Student{},
		&model.User{},
		&model.FeeType{},
		&model.PricingSchema{},
		&model.Registration{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Payment{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own: the document number sequences and the canonical fee type
// rows that invoice items resolve by code. Each statement uses IF NOT EXISTS /
// ON CONFLICT semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Document number sequences backing REG-/INV-/PAY- formats.
		`CREATE SEQUENCE IF NOT EXISTS registrations_number_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS invoices_number_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS payments_number_seq START 1`,

		// Canonical fee types, keyed by code. Display names are free to change;
		// the codes are not.
		`INSERT INTO fee_types (id, code, name, created_at, updated_at) VALUES
		   (gen_random_uuid(), 'REGISTRATION', 'Registration Fee', now(), now()),
		   (gen_random_uuid(), 'MONTHLY',      'Monthly Fee',      now(), now()),
		   (gen_random_uuid(), 'QUARTERLY',    'Quarterly Fee',    now(), now()),
		   (gen_random_uuid(), 'SERVICE',      'Service Fee',      now(), now())
		 ON CONFLICT (code) DO NOTHING`,

		// Partial index for the invoice list's default ordering within a branch.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_invoices_branch_created') THEN
		    CREATE INDEX idx_invoices_branch_created ON invoices (branch_id, created_at DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
