package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the test schema or skips the test when no MySQL
// server is reachable.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	hosts := []string{env.GetEnv("DB_HOST", ""), "db", "localhost", "127.0.0.1"}
	user := env.GetEnv("DB_USER", "chapterfox")
	password := env.GetEnv("DB_PASSWORD", "chapterfox")
	name := env.GetEnv("TEST_DB_NAME", "chapterfox_test")

	var lastErr error
	for _, host := range hosts {
		if host == "" {
			continue
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:3306)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=1s",
			user, password, host, name)
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			lastErr = err
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = sqlDB.PingContext(ctx)
		cancel()
		if err != nil {
			_ = sqlDB.Close()
			lastErr = err
			continue
		}

		if err := db.AutoMigrate(&models.User{}, &models.ChapterSet{}, &models.UsageCounter{}, &models.ProviderAccount{}); err != nil {
			t.Fatalf("failed to migrate test schema: %v", err)
		}
		resetTables(t, db)
		t.Cleanup(func() {
			resetTables(t, db)
			_ = sqlDB.Close()
		})
		return db
	}

	t.Skipf("Skipping MySQL-dependent test: no reachable MySQL endpoint (%v)", lastErr)
	return nil
}

func resetTables(t *testing.T, db *gorm.DB) {
	t.Helper()

	for _, table := range []string{"usage_counters", "chapter_sets", "provider_accounts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	u, err := models.NewSocialUser("Test User", email, "")
	if err != nil {
		t.Fatalf("invalid test user: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}
