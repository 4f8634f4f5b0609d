package repository

import (
	"context"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type providerAccountRepository struct {
	db *gorm.DB
}

// NewProviderAccountRepository creates a new provider account repository instance
func NewProviderAccountRepository(db *gorm.DB) ProviderAccountRepository {
	return &providerAccountRepository{db: db}
}

func (r *providerAccountRepository) GetByProviderUser(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error) {
	var pa models.ProviderAccount
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&pa).Error
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

// Link stores the identity; an existing link for the same provider user is kept.
func (r *providerAccountRepository) Link(ctx context.Context, account *models.ProviderAccount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(account).Error
}
