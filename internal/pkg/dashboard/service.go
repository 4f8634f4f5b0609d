package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"github.com/rs/zerolog"
)

// recentLimit bounds the chapter sets shown on the dashboard.
const recentLimit = 50

// ChapterSetSummary is one saved chapter set as listed on the dashboard.
type ChapterSetSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	VideoID   string    `json:"videoId"`
	Content   []string  `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// View is the signed-in user's dashboard.
type View struct {
	Eligibility  quota.Eligibility   `json:"eligibility"`
	IsSubscribed bool                `json:"isSubscribed"`
	Plan         string              `json:"plan"`
	ResetsAt     time.Time           `json:"resetsAt"`
	ChapterSets  []ChapterSetSummary `json:"chapterSets"`
}

type ViewCache interface {
	Get(ctx context.Context, userID uint) (*View, error)
	Set(ctx context.Context, userID uint, v *View) error
}

type Evaluator interface {
	Evaluate(ctx context.Context, user *models.User) (quota.Decision, error)
}

type ChapterSetLister interface {
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.ChapterSet, error)
}

// Service assembles dashboards and serves them from the cache when possible.
type Service struct {
	engine Evaluator
	sets   ChapterSetLister
	cache  ViewCache
	logger zerolog.Logger
}

// NewService creates a dashboard service. cache may be nil.
func NewService(engine Evaluator, sets ChapterSetLister, cache ViewCache, logger zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		sets:   sets,
		cache:  cache,
		logger: logger.With().Str("service", "DashboardService").Logger(),
	}
}

func (s *Service) Load(ctx context.Context, user *models.User) (*View, error) {
	if s.cache != nil {
		v, err := s.cache.Get(ctx, user.ID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("Dashboard cache read failed")
		} else if v != nil && (v.ResetsAt.IsZero() || time.Now().Before(v.ResetsAt)) {
			return v, nil
		}
	}

	d, err := s.engine.Evaluate(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("evaluate eligibility: %w", err)
	}
	sets, err := s.sets.ListByUser(ctx, user.ID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list chapter sets: %w", err)
	}

	v := &View{
		Eligibility:  d.Eligibility,
		IsSubscribed: d.Subscribed,
		Plan:         string(d.Plan),
		ResetsAt:     d.Window.End,
		ChapterSets:  make([]ChapterSetSummary, 0, len(sets)),
	}
	for _, cs := range sets {
		v.ChapterSets = append(v.ChapterSets, ChapterSetSummary{
			ID:        cs.UUID,
			Title:     cs.Title,
			VideoID:   cs.VideoID,
			Content:   cs.Content,
			CreatedAt: cs.CreatedAt,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user.ID, v); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("Dashboard cache write failed")
		}
	}
	return v, nil
}
