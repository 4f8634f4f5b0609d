package models

import "time"

// UsageCounter counts generations admitted for a user in one quota window.
// It backs the conditional increment of the enforcing admission path.
type UsageCounter struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:ux_usage_counters_user_window,unique,priority:1" json:"user_id"`
	WindowStart time.Time `gorm:"not null;index:ux_usage_counters_user_window,unique,priority:2" json:"window_start"`
	WindowEnd   time.Time `gorm:"not null" json:"window_end"`
	Used        int       `gorm:"not null;default:0" json:"used"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
