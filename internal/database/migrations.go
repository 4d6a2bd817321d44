package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect selects dialect-specific DDL.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const createEmployeesTablePostgres = `
CREATE TABLE IF NOT EXISTS employees (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    position TEXT,
    phone TEXT,
    address TEXT,
    birth_date DATE,
    gender TEXT,
    department TEXT,
    image_url TEXT
);
`

const createEmployeesTableSQLite = `
CREATE TABLE IF NOT EXISTS employees (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    position TEXT,
    phone TEXT,
    address TEXT,
    birth_date DATE,
    gender TEXT,
    department TEXT,
    image_url TEXT
);
`

const createPhoneIndex = `CREATE UNIQUE INDEX IF NOT EXISTS employees_phone_key ON employees (phone);`

// Migrate creates the employees table and its unique phone index.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var createTable string
	switch dialect {
	case DialectPostgres:
		createTable = createEmployeesTablePostgres
	case DialectSQLite:
		createTable = createEmployeesTableSQLite
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create employees table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createPhoneIndex); err != nil {
		return fmt.Errorf("failed to create phone index: %w", err)
	}
	return nil
}
