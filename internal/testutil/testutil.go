package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"anoa.com/newtongame/internal/bootstrap"
	"anoa.com/newtongame/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// DB opens a fresh in-memory SQLite database with every table migrated.
// Each call gets its own database so tests can run in parallel.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared&_foreign_keys=1", dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive and
	// serialises writers the way row locks would on Postgres.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, username string) *entity.User {
	tb.Helper()
	u := &entity.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "pw",
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedScoreEvent(tb testing.TB, ctx context.Context, db *gorm.DB, userID uuid.UUID, points int) {
	tb.Helper()
	ev := &entity.ScoreEvent{UserID: userID, Points: points, Source: "save_points"}
	if err := db.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed score event: %v", err)
	}
}
