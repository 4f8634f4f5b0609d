package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"gorm.io/gorm"
)

// ErrQuotaExceeded is returned by CreateWithinQuota when the window's counter
// already reached the limit. Nothing is inserted in that case.
var ErrQuotaExceeded = errors.New("quota exceeded")

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID uint, customerID string) error
	TouchLastLogin(ctx context.Context, userID uint) error
}

// ChapterSetRepository defines persistence for generated chapter sets.
type ChapterSetRepository interface {
	// Create inserts without any quota guard.
	Create(ctx context.Context, set *models.ChapterSet) error
	// CreateWithinQuota counts and inserts atomically. Returns ErrQuotaExceeded
	// if the user already has limit generations in [start, end).
	CreateWithinQuota(ctx context.Context, set *models.ChapterSet, start, end time.Time, limit int) error
	// CountByUserInWindow counts chapter sets with start <= created_at < end.
	CountByUserInWindow(ctx context.Context, userID uint, start, end time.Time) (int, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.ChapterSet, error)
	GetByUUID(ctx context.Context, uuid string) (*models.ChapterSet, error)
}

// ProviderAccountRepository links OAuth identities to users.
type ProviderAccountRepository interface {
	GetByProviderUser(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error)
	Link(ctx context.Context, account *models.ProviderAccount) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	ChapterSet      ChapterSetRepository
	ProviderAccount ProviderAccountRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		ChapterSet:      NewChapterSetRepository(db),
		ProviderAccount: NewProviderAccountRepository(db),
	}
}
