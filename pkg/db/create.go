package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
)

// maintenanceURL points dsn at the "postgres" database and returns the
// database name it originally named. ok is false for sqlite and for
// keyword/value DSNs.
func maintenanceURL(dsn string) (admin, name string, ok bool) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return "", "", false
	}
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", "", false
	}
	name = strings.TrimPrefix(u.Path, "/")
	if name == "" || name == "postgres" {
		return "", "", false
	}
	u.Path = "/postgres"
	return u.String(), name, true
}

// EnsureDatabase creates the database named in a postgres URL when it does
// not exist yet. Other DSNs are left alone.
func EnsureDatabase(ctx context.Context, dsn string) error {
	admin, name, ok := maintenanceURL(dsn)
	if !ok {
		return nil
	}

	conn, err := sql.Open("postgres", admin)
	if err != nil {
		return fmt.Errorf("open maintenance db: %w", err)
	}
	defer conn.Close()

	var exists bool
	err = conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup database %q: %w", name, err)
	}
	if exists {
		return nil
	}

	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		var pqErr *pq.Error
		// 42P04: duplicate_database, another instance won the race
		if errors.As(err, &pqErr) && pqErr.Code == "42P04" {
			return nil
		}
		return fmt.Errorf("create database %q: %w", name, err)
	}
	return nil
}
