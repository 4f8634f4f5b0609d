package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type chapterSetRepository struct {
	db *gorm.DB
}

// NewChapterSetRepository creates a new chapter set repository instance
func NewChapterSetRepository(db *gorm.DB) ChapterSetRepository {
	return &chapterSetRepository{db: db}
}

func (r *chapterSetRepository) Create(ctx context.Context, set *models.ChapterSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

// CreateWithinQuota runs count, counter seed, conditional increment and insert
// in one transaction. The counter row is seeded with the number of chapter
// sets already in the window so rows written before the counter existed still
// count. The conditional UPDATE takes the row lock, so two concurrent
// admissions for the same window are serialized on it and the second one sees
// the first one's increment.
func (r *chapterSetRepository) CreateWithinQuota(ctx context.Context, set *models.ChapterSet, start, end time.Time, limit int) error {
	start = start.UTC()
	end = end.UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ChapterSet{}).
			Where("user_id = ? AND created_at >= ? AND created_at < ?", set.UserID, start, end).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("counting chapter sets for user %d: %w", set.UserID, err)
		}

		seed := models.UsageCounter{
			UserID:      set.UserID,
			WindowStart: start,
			WindowEnd:   end,
			Used:        int(existing),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seeding usage counter for user %d: %w", set.UserID, err)
		}

		res := tx.Model(&models.UsageCounter{}).
			Where("user_id = ? AND window_start = ? AND GREATEST(used, ?) < ?", set.UserID, start, existing, limit).
			Update("used", gorm.Expr("GREATEST(used, ?) + 1", existing))
		if res.Error != nil {
			return fmt.Errorf("incrementing usage counter for user %d: %w", set.UserID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrQuotaExceeded
		}

		if err := tx.Create(set).Error; err != nil {
			return fmt.Errorf("creating chapter set for user %d: %w", set.UserID, err)
		}
		return nil
	})
}

func (r *chapterSetRepository) CountByUserInWindow(ctx context.Context, userID uint, start, end time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChapterSet{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start.UTC(), end.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting chapter sets for user %d: %w", userID, err)
	}
	return int(count), nil
}

// ListByUser returns the newest chapter sets first. A limit <= 0 returns all.
func (r *chapterSetRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.ChapterSet, error) {
	var sets []models.ChapterSet
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sets).Error
	return sets, err
}

func (r *chapterSetRepository) GetByUUID(ctx context.Context, uuid string) (*models.ChapterSet, error) {
	var set models.ChapterSet
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&set).Error
	if err != nil {
		return nil, err
	}
	return &set, nil
}
