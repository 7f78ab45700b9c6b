// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"legalaware/backend/config"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// DB opens a fresh, migrated in-memory SQLite database for tb.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	// Every connection to a named memory db shares it; one connection keeps
	// writers from seeing "database is locked".
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// Config returns settings suitable for handler tests.
func Config() *config.Config {
	return &config.Config{
		DBDriver:              "sqlite",
		JWTSecret:             "test-secret",
		JWTTTL:                time.Hour,
		ServerPort:            "0",
		CORSOrigins:           "*",
		LogMode:               "test",
		Location:              time.UTC,
		ActivityRetentionDays: 90,
		AMQPExchange:          "gamification",
	}
}

// Token signs an access token for user.
func Token(tb testing.TB, cfg *config.Config, user *models.User) string {
	tb.Helper()
	token, err := utils.GenerateJWTToken(user.ID, user.Role, cfg)
	if err != nil {
		tb.Fatalf("failed to sign token: %v", err)
	}
	return token
}
