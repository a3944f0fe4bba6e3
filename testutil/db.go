// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bellapacxx/bingo-sessions/config"
	"github.com/bellapacxx/bingo-sessions/models"
)

// NewDB opens a private in-memory database with the full schema
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Names returns n fake player names, distinct with overwhelming probability
func Names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %s", gofakeit.FirstName(), gofakeit.LetterN(8))
	}
	return out
}

// SeedPlayers inserts active players with the given scores
func SeedPlayers(t testing.TB, db *gorm.DB, scores ...int) []models.Player {
	t.Helper()

	names := Names(len(scores))
	players := make([]models.Player, len(scores))
	for i, score := range scores {
		players[i] = models.Player{
			Name:    names[i],
			NameKey: strings.ToLower(names[i]),
			Score:   score,
			Active:  true,
		}
		require.NoError(t, db.Create(&players[i]).Error)
	}
	return players
}
