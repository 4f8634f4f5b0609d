package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/app/repository"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/youtube"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sampleTranscript = `<transcript><text start="0" dur="2">hello and welcome</text><text start="95" dur="3">channels in depth</text></transcript>`

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type noSubs struct{}

func (noSubs) SubscriptionsFor(context.Context, *models.User) ([]billing.Subscription, error) {
	return nil, nil
}

type fakeVideos struct {
	mu        sync.Mutex
	details   *youtube.VideoDetails
	subtitles *youtube.SubtitlesResponse
	infoErr   error
	subsErr   error
	infoCalls int
	subsCalls int
}

func newFakeVideos(length string) *fakeVideos {
	return &fakeVideos{
		details: &youtube.VideoDetails{ID: "dQw4w9WgXcQ", Title: "Go Channels", LengthSeconds: length},
		subtitles: &youtube.SubtitlesResponse{Subtitles: []youtube.Subtitle{
			{LanguageCode: "en", URL: "https://example.test/en.xml"},
		}},
	}
}

func (f *fakeVideos) VideoInfo(context.Context, string) (*youtube.VideoDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	return f.details, f.infoErr
}

func (f *fakeVideos) Subtitles(context.Context, string) (*youtube.SubtitlesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subsCalls++
	return f.subtitles, f.subsErr
}

type fakeTranscripts struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls int
}

func (f *fakeTranscripts) FetchTranscript(context.Context, string, youtube.Subtitle) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.data, f.err
}

type fakeChapters struct {
	mu    sync.Mutex
	lines []string
	err   error
	calls int
}

func (f *fakeChapters) Generate(context.Context, string, int, youtube.Transcript) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.lines, f.err
}

// memStore is an in-memory chapter set store. CreateWithinQuota counts and
// inserts under one lock; Create inserts unconditionally.
type memStore struct {
	mu   sync.Mutex
	sets []*models.ChapterSet
	err  error
	now  func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{now: now}
}

func (m *memStore) insertLocked(set *models.ChapterSet) {
	set.ID = uint(len(m.sets) + 1)
	set.UUID = uuid.New().String()
	set.CreatedAt = m.now().UTC()
	m.sets = append(m.sets, set)
}

func (m *memStore) countLocked(userID uint, start, end time.Time) int {
	n := 0
	for _, s := range m.sets {
		if s.UserID == userID && !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			n++
		}
	}
	return n
}

func (m *memStore) Create(_ context.Context, set *models.ChapterSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.insertLocked(set)
	return nil
}

func (m *memStore) CreateWithinQuota(_ context.Context, set *models.ChapterSet, start, end time.Time, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.countLocked(set.UserID, start, end) >= limit {
		return repository.ErrQuotaExceeded
	}
	m.insertLocked(set)
	return nil
}

func (m *memStore) CountByUserInWindow(_ context.Context, userID uint, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(userID, start, end), nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets)
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls map[uint]int
}

func (f *fakeNotifier) DashboardChanged(_ context.Context, userID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[uint]int{}
	}
	f.calls[userID]++
}

func (f *fakeNotifier) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// staleEvaluator always reports the same decision, like a check that ran
// before a concurrent request took the last slot.
type staleEvaluator struct {
	decision quota.Decision
	err      error
}

func (s staleEvaluator) Evaluate(context.Context, *models.User) (quota.Decision, error) {
	return s.decision, s.err
}

var errBoom = errors.New("boom")
