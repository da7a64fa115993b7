// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/catalog/internal/repo"
	"github.com/Skotchmaster/catalog/pkg/tokens"
)

const (
	AccessSecret  = "test-jwt-secret"
	RefreshSecret = "test-refresh-secret"
)

// NewDB returns a migrated in-memory sqlite database. A single connection is
// kept open because every new connection to :memory: is a fresh database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to connect to in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repo.New(db).Migrate(context.Background()), "failed to migrate tables")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func NewRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(NewDB(t))
}

func NewIssuer(t *testing.T) *tokens.Issuer {
	t.Helper()

	iss, err := tokens.NewIssuer(tokens.Config{
		AccessSecret:  []byte(AccessSecret),
		RefreshSecret: []byte(RefreshSecret),
	})
	require.NoError(t, err)
	return iss
}
