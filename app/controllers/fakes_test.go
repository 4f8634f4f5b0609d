package controllers

import (
	"context"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/dashboard"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/generation"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users   map[uint]*models.User
	nextID  uint
	touched []uint
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]*models.User{}, nextID: 100}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*models.User, error) {
	for _, u := range r.users {
		if u.StripeCustomer() == customerID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateStripeCustomerID(_ context.Context, userID uint, customerID string) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.StripeCustomerID = &customerID
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, userID uint) error {
	r.touched = append(r.touched, userID)
	return nil
}

type fakeChapterSetRepo struct {
	sets map[string]*models.ChapterSet
}

func (r *fakeChapterSetRepo) Create(context.Context, *models.ChapterSet) error { return nil }

func (r *fakeChapterSetRepo) CreateWithinQuota(context.Context, *models.ChapterSet, time.Time, time.Time, int) error {
	return nil
}

func (r *fakeChapterSetRepo) CountByUserInWindow(context.Context, uint, time.Time, time.Time) (int, error) {
	return 0, nil
}

func (r *fakeChapterSetRepo) ListByUser(context.Context, uint, int) ([]models.ChapterSet, error) {
	return nil, nil
}

func (r *fakeChapterSetRepo) GetByUUID(_ context.Context, uuid string) (*models.ChapterSet, error) {
	if s, ok := r.sets[uuid]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeProviderRepo struct {
	accounts []models.ProviderAccount
}

func (r *fakeProviderRepo) GetByProviderUser(_ context.Context, provider, providerUserID string) (*models.ProviderAccount, error) {
	for i := range r.accounts {
		if r.accounts[i].Provider == provider && r.accounts[i].ProviderUserID == providerUserID {
			return &r.accounts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProviderRepo) Link(_ context.Context, a *models.ProviderAccount) error {
	r.accounts = append(r.accounts, *a)
	return nil
}

type stubPipeline struct {
	result generation.Result
	gotID  quota.Identity
	gotURL string
}

func (s *stubPipeline) Run(_ context.Context, id quota.Identity, link string) generation.Result {
	s.gotID = id
	s.gotURL = link
	return s.result
}

type stubEligibility struct {
	result quota.Eligibility
	gotID  quota.Identity
}

func (s *stubEligibility) Check(_ context.Context, id quota.Identity) quota.Eligibility {
	s.gotID = id
	return s.result
}

type stubDashboard struct {
	view *dashboard.View
	err  error
}

func (s *stubDashboard) Load(context.Context, *models.User) (*dashboard.View, error) {
	return s.view, s.err
}

type stubBilling struct {
	checkoutURL string
	portalURL   string
	err         error
	outcome     *billing.WebhookOutcome
	webhookErr  error
	gotSig      string
}

func (s *stubBilling) CheckoutURL(context.Context, *models.User) (string, error) {
	return s.checkoutURL, s.err
}

func (s *stubBilling) PortalURL(context.Context, *models.User) (string, error) {
	return s.portalURL, s.err
}

func (s *stubBilling) HandleStripeWebhook(_ context.Context, _ []byte, sig string) (*billing.WebhookOutcome, error) {
	s.gotSig = sig
	return s.outcome, s.webhookErr
}
