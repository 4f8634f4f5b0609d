package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"
)

// User is created on first social login. The Stripe customer reference is
// assigned lazily the first time a billing action needs it.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Email            string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,max=200"`
	AvatarURL        string         `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`
	Role             string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status           string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`
	StripeCustomerID *string        `gorm:"type:varchar(191);uniqueIndex;default:null" json:"-"`
	LastLoginAt      *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	ChapterSets      []ChapterSet   `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewSocialUser builds a user for a first OAuth sign-in. Name falls back to
// the email when the provider does not supply one.
func NewSocialUser(name, email, avatarURL string) (*User, error) {
	if name == "" {
		name = email
	}
	if len(name) > 150 {
		name = name[:150]
	}

	now := time.Now()
	u := &User{
		Name:        name,
		Email:       email,
		AvatarURL:   avatarURL,
		Role:        ROLE_USER,
		Status:      STATUS_ACTIVE,
		LastLoginAt: &now,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// HasStripeCustomer reports whether a billing customer was already created.
func (u *User) HasStripeCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}

// StripeCustomer returns the customer id or an empty string.
func (u *User) StripeCustomer() string {
	if u.StripeCustomerID == nil {
		return ""
	}
	return *u.StripeCustomerID
}
