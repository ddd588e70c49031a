package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Column names are quoted camelCase so databases created by earlier web
// clients keep working.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		"taxRate" NUMERIC,
		"minStockLevel" INTEGER NOT NULL DEFAULT 5
	)`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS "rentalDuration" TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		items JSONB NOT NULL DEFAULT '[]',
		total NUMERIC NOT NULL DEFAULT 0,
		"taxTotal" NUMERIC NOT NULL DEFAULT 0,
		customer JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(date)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		place TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone)`,

	`CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		logo TEXT NOT NULL DEFAULT '',
		"paymentQrCode" TEXT NOT NULL DEFAULT '',
		"footerMessage" TEXT NOT NULL DEFAULT '',
		"poweredByText" TEXT,
		"taxEnabled" BOOLEAN,
		"defaultTaxRate" NUMERIC,
		"showLogo" BOOLEAN,
		"showPaymentQr" BOOLEAN,
		"aiDescriptionPrompt" TEXT
	)`,

	`CREATE OR REPLACE FUNCTION warungpos_notify_change() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('` + changeChannel + `', TG_TABLE_NAME);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql`,
}

var notifiedTables = []string{"products", "orders", "customers", "settings"}

// Migrate creates the schema and the change-notification triggers. Every
// statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	statements := append([]string{}, migrations...)
	for _, table := range notifiedTables {
		trigger := table + "_notify_change"
		statements = append(statements,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table),
			fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE OR TRUNCATE ON %s
				FOR EACH STATEMENT EXECUTE FUNCTION warungpos_notify_change()`, trigger, table),
		)
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	s.log.Info("schema migrated", zap.Int("statements", len(statements)))
	return nil
}
