package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChapterSetValidate(t *testing.T) {
	valid := &ChapterSet{
		Title:   "Intro to Go",
		VideoID: "dQw4w9WgXcQ",
		Content: []string{"0:00 Intro", "1:00 Topic"},
		UserID:  7,
	}
	require.NoError(t, valid.Validate())

	empty := *valid
	empty.Content = nil
	assert.Error(t, empty.Validate())

	noOwner := *valid
	noOwner.UserID = 0
	assert.Error(t, noOwner.Validate())
}

func TestChapterSetBeforeCreateAssignsIdentity(t *testing.T) {
	c := &ChapterSet{}
	require.NoError(t, c.BeforeCreate(nil))

	assert.Len(t, c.UUID, 36)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, "UTC", c.CreatedAt.Location().String())

	uuid := c.UUID
	require.NoError(t, c.BeforeCreate(nil))
	assert.Equal(t, uuid, c.UUID)
}

func TestChapterSetIsImmutable(t *testing.T) {
	c := &ChapterSet{}
	assert.ErrorIs(t, c.BeforeUpdate(nil), ErrImmutableChapterSet)
}

func TestNewSocialUser(t *testing.T) {
	u, err := NewSocialUser("", "ada@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Name)
	assert.True(t, u.IsActive())
	assert.False(t, u.HasStripeCustomer())
	assert.Equal(t, "", u.StripeCustomer())

	_, err = NewSocialUser("Ada", "not-an-email", "")
	assert.Error(t, err)

	id := "cus_123"
	u.StripeCustomerID = &id
	assert.True(t, u.HasStripeCustomer())
	assert.Equal(t, "cus_123", u.StripeCustomer())
}
