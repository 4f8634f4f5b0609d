package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChapterSet is one successful chapter generation. Rows are written once and
// never updated.
type ChapterSet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      string    `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	Title     string    `gorm:"type:varchar(255)" json:"title" validate:"max=255"`
	VideoID   string    `gorm:"type:varchar(32);index" json:"video_id" validate:"required,max=32"`
	Content   []string  `gorm:"type:json;serializer:json" json:"content" validate:"required,min=1"`
	UserID    uint      `gorm:"not null;index:idx_chapter_sets_user_created,priority:1" json:"user_id" validate:"required"`
	CreatedAt time.Time `gorm:"not null;index:idx_chapter_sets_user_created,priority:2" json:"created_at"`
}

var ErrImmutableChapterSet = errors.New("chapter sets are immutable")

func (c *ChapterSet) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// BeforeCreate assigns the public UUID and a UTC creation time.
func (c *ChapterSet) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate rejects any update of a persisted chapter set.
func (c *ChapterSet) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableChapterSet
}
