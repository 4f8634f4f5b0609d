package controllers

import (
	"context"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/app/repository"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/dashboard"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/generation"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"github.com/rs/zerolog"
)

type ChapterGenerator interface {
	Run(ctx context.Context, id quota.Identity, link string) generation.Result
}

type EligibilityChecker interface {
	Check(ctx context.Context, id quota.Identity) quota.Eligibility
}

type DashboardLoader interface {
	Load(ctx context.Context, user *models.User) (*dashboard.View, error)
}

type BillingService interface {
	CheckoutURL(ctx context.Context, user *models.User) (string, error)
	PortalURL(ctx context.Context, user *models.User) (string, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) (*billing.WebhookOutcome, error)
}

// Dependencies are the services the handlers work with.
type Dependencies struct {
	Users            repository.UserRepository
	ChapterSets      repository.ChapterSetRepository
	ProviderAccounts repository.ProviderAccountRepository
	Pipeline         ChapterGenerator
	Eligibility      EligibilityChecker
	Dashboard        DashboardLoader
	Billing          BillingService
	Logger           zerolog.Logger
}

var deps Dependencies

// Initialize wires the handlers. It must run before routes are served.
func Initialize(d Dependencies) {
	d.Logger = d.Logger.With().Str("component", "controllers").Logger()
	deps = d
}

// GetDependencies returns the wired services, e.g. for the API handlers.
func GetDependencies() Dependencies {
	return deps
}
