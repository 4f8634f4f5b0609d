package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/app/repository"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/metrics"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/youtube"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Policy selects how the quota gates a generation.
type Policy string

const (
	// PolicyEnforce denies exhausted users up front and admits the insert
	// atomically against the quota.
	PolicyEnforce Policy = "enforce"
	// PolicyAdvisory only reports eligibility; generation is never blocked.
	PolicyAdvisory Policy = "advisory"
)

// ParsePolicy maps a configuration value to a Policy. Unknown values enforce.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyAdvisory)) {
		return PolicyAdvisory
	}
	return PolicyEnforce
}

const defaultMaxVideoSeconds = 3600

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type EligibilityEvaluator interface {
	Evaluate(ctx context.Context, user *models.User) (quota.Decision, error)
}

type VideoSource interface {
	VideoInfo(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
	Subtitles(ctx context.Context, videoID string) (*youtube.SubtitlesResponse, error)
}

type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string, track youtube.Subtitle) ([]byte, error)
}

type ChapterGenerator interface {
	Generate(ctx context.Context, title string, lengthSeconds int, transcript youtube.Transcript) ([]string, error)
}

type ChapterSetStore interface {
	Create(ctx context.Context, set *models.ChapterSet) error
	CreateWithinQuota(ctx context.Context, set *models.ChapterSet, start, end time.Time, limit int) error
}

// Notifier is told once per successful generation.
type Notifier interface {
	DashboardChanged(ctx context.Context, userID uint)
}

// Deps are the collaborators of the pipeline.
type Deps struct {
	Users       UserFinder
	Eligibility EligibilityEvaluator
	Videos      VideoSource
	Transcripts TranscriptFetcher
	Chapters    ChapterGenerator
	Store       ChapterSetStore
	Notifier    Notifier
	Metrics     *metrics.Metrics
}

type Options struct {
	Policy          Policy
	MaxVideoSeconds int
}

// Pipeline turns a submitted YouTube link into a saved chapter set.
type Pipeline struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger
}

func NewPipeline(deps Deps, opts Options, logger zerolog.Logger) *Pipeline {
	if opts.Policy == "" {
		opts.Policy = PolicyEnforce
	}
	if opts.MaxVideoSeconds <= 0 {
		opts.MaxVideoSeconds = defaultMaxVideoSeconds
	}
	return &Pipeline{
		deps:   deps,
		opts:   opts,
		logger: logger.With().Str("service", "GenerationPipeline").Logger(),
	}
}

func (p *Pipeline) Policy() Policy {
	return p.opts.Policy
}

// Run executes the steps in order and stops at the first failure. Nothing is
// persisted unless every step before the insert succeeded.
func (p *Pipeline) Run(ctx context.Context, id quota.Identity, link string) Result {
	res := p.run(ctx, id, link)
	p.deps.Metrics.RecordGeneration(res.Outcome())
	return res
}

func (p *Pipeline) run(ctx context.Context, id quota.Identity, link string) Result {
	if !id.Present() {
		return fail(KindAuthenticationRequired, ErrAuthenticationRequired)
	}

	user, err := p.deps.Users.GetByEmail(ctx, id.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user == nil) {
		return fail(KindNotFound, ErrUserNotFound)
	}
	if err != nil {
		p.logger.Error().Err(err).Str("email", id.Email).Msg("Failed to load user")
		return fail(KindInternal, ErrUserNotFound)
	}
	log := p.logger.With().Uint("user_id", user.ID).Logger()

	var decision quota.Decision
	if p.opts.Policy == PolicyEnforce {
		decision, err = p.deps.Eligibility.Evaluate(ctx, user)
		if err != nil {
			log.Error().Err(err).Msg("Eligibility check failed")
			return fail(KindInternal, ErrEligibilityFailed)
		}
		if !decision.IsEligible {
			res := fail(KindQuotaExceeded, ErrQuotaExceeded)
			res.Message = decision.Message
			return res
		}
	}

	link = strings.TrimSpace(link)
	if link == "" {
		return fail(KindValidation, ErrLinkRequired)
	}
	if !youtube.ValidateLink(link) {
		return fail(KindValidation, ErrInvalidLink)
	}
	videoID, err := youtube.ExtractVideoID(link)
	if err != nil {
		log.Warn().Err(err).Str("link", link).Msg("Could not extract video id")
		return fail(KindValidation, ErrVideoID)
	}
	log = log.With().Str("video_id", videoID).Logger()

	details, err := p.deps.Videos.VideoInfo(ctx, videoID)
	p.deps.Metrics.RecordUpstream("youtube", err)
	if err != nil {
		log.Error().Err(err).Msg("Video info lookup failed")
		return fail(KindUpstream, ErrVideoDetails)
	}
	subs, err := p.deps.Videos.Subtitles(ctx, videoID)
	p.deps.Metrics.RecordUpstream("youtube", err)
	if err != nil {
		log.Error().Err(err).Msg("Subtitle list lookup failed")
		return fail(KindUpstream, ErrVideoDetails)
	}
	track, err := subs.FirstTrack()
	if err != nil {
		log.Warn().Err(err).Msg("Video has no subtitle track")
		return fail(KindUpstream, ErrVideoDetails)
	}

	length, err := parseLength(details.LengthSeconds)
	if err != nil {
		log.Warn().Err(err).Str("length", details.LengthSeconds).Msg("Unusable video length")
		return fail(KindUpstream, ErrVideoLength)
	}
	if length > p.opts.MaxVideoSeconds {
		return fail(KindValidation, ErrVideoTooLong)
	}

	raw, err := p.deps.Transcripts.FetchTranscript(ctx, videoID, track)
	p.deps.Metrics.RecordUpstream("transcript", err)
	if err != nil {
		log.Error().Err(err).Str("lang", track.LanguageCode).Msg("Transcript download failed")
		return fail(KindUpstream, ErrTranscript)
	}
	transcript, err := youtube.ParseTranscript(raw)
	if err != nil {
		log.Error().Err(err).Str("lang", track.LanguageCode).Msg("Transcript parse failed")
		return fail(KindUpstream, ErrTranscript)
	}

	lines, err := p.deps.Chapters.Generate(ctx, details.Title, length, transcript)
	p.deps.Metrics.RecordUpstream("openai", err)
	if err != nil || len(lines) == 0 {
		log.Error().Err(err).Msg("Chapter generation failed")
		return fail(KindUpstream, ErrChapters)
	}

	set := &models.ChapterSet{
		Title:   details.Title,
		VideoID: videoID,
		Content: lines,
		UserID:  user.ID,
	}
	if res, ok := p.persist(ctx, log, set, decision); !ok {
		return res
	}

	if p.deps.Notifier != nil {
		p.deps.Notifier.DashboardChanged(ctx, user.ID)
	}
	log.Info().Str("chapter_set", set.UUID).Int("chapters", len(lines)).Msg("Chapters generated")
	return succeed(set)
}

func (p *Pipeline) persist(ctx context.Context, log zerolog.Logger, set *models.ChapterSet, decision quota.Decision) (Result, bool) {
	var err error
	if p.opts.Policy == PolicyEnforce {
		err = p.deps.Store.CreateWithinQuota(ctx, set, decision.Window.Start, decision.Window.End, decision.Limit)
	} else {
		err = p.deps.Store.Create(ctx, set)
	}

	if errors.Is(err, repository.ErrQuotaExceeded) {
		log.Info().Int("limit", decision.Limit).Msg("Quota used up by a concurrent generation")
		res := fail(KindQuotaExceeded, ErrQuotaExceeded)
		res.Message = decision.Exhausted().Message
		return res, false
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to save chapter set")
		return fail(KindInternal, ErrSave), false
	}
	return Result{}, true
}

// parseLength reads the API's lengthSeconds string. Fractions are truncated.
func parseLength(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative length %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse length %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return int(f), nil
}
