package generation

import (
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
)

// Kind classifies why a generation failed.
type Kind string

const (
	KindAuthenticationRequired Kind = "authentication_required"
	KindNotFound               Kind = "not_found"
	KindValidation             Kind = "validation_failure"
	KindUpstream               Kind = "upstream_failure"
	KindQuotaExceeded          Kind = "quota_exceeded"
	KindInternal               Kind = "internal"
)

// User-facing failure reasons, one per pipeline step.
const (
	ErrAuthenticationRequired = "Authentication required"
	ErrUserNotFound           = "User not found"
	ErrQuotaExceeded          = "Quota exceeded"
	ErrEligibilityFailed      = "Failed to check eligibility"
	ErrLinkRequired           = "Link is required"
	ErrInvalidLink            = "Invalid link"
	ErrVideoID                = "Failed to get video ID"
	ErrVideoDetails           = "Failed to get video details"
	ErrVideoLength            = "Failed to get video length"
	ErrVideoTooLong           = "Video length is too long"
	ErrTranscript             = "Failed to parse transcript"
	ErrChapters               = "Failed to generate chapters"
	ErrSave                   = "Failed to save chapters"
)

// ChapterSetData is the persisted chapter set as returned to the caller.
type ChapterSetData struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   []string  `json:"content"`
	UserID    uint      `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is the outcome of one pipeline run. On failure Error holds exactly
// one reason and Data is nil.
type Result struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Kind    Kind            `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    *ChapterSetData `json:"data,omitempty"`
}

func fail(kind Kind, reason string) Result {
	return Result{Kind: kind, Error: reason}
}

func succeed(set *models.ChapterSet) Result {
	return Result{
		Success: true,
		Data: &ChapterSetData{
			ID:        set.UUID,
			Title:     set.Title,
			Content:   set.Content,
			UserID:    set.UserID,
			CreatedAt: set.CreatedAt,
		},
	}
}

// Outcome is the metrics label of a result.
func (r Result) Outcome() string {
	if r.Success {
		return "success"
	}
	return string(r.Kind)
}
