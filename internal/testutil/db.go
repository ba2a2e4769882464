// Package testutil provides an isolated in-memory database for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/geo_forum/internal/models"
	"github.com/Skotchmaster/geo_forum/pkg/db"
)

// NewDB opens a fresh shared-cache SQLite database and migrates the schema.
// Each call gets its own database name so parallel tests do not collide.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "sqlite:file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
