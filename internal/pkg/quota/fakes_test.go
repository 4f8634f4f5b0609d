package quota

import (
	"context"
	"sync"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"gorm.io/gorm"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSubs struct {
	mu    sync.Mutex
	subs  []billing.Subscription
	err   error
	calls int
}

func (f *fakeSubs) SubscriptionsFor(ctx context.Context, user *models.User) ([]billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.subs, f.err
}

// memStore keeps chapter set creation times per user. It offers both the
// naive insert and a mutex guarded count-and-insert.
type memStore struct {
	mu      sync.Mutex
	created map[uint][]time.Time
	err     error
	window  Window
}

func newMemStore() *memStore {
	return &memStore{created: map[uint][]time.Time{}}
}

func (m *memStore) seed(userID uint, times ...time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[userID] = append(m.created[userID], times...)
}

func (m *memStore) countLocked(userID uint, start, end time.Time) int {
	n := 0
	for _, t := range m.created[userID] {
		if !t.Before(start) && t.Before(end) {
			n++
		}
	}
	return n
}

func (m *memStore) CountByUserInWindow(ctx context.Context, userID uint, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.window = Window{Start: start, End: end}
	return m.countLocked(userID, start, end), nil
}

func (m *memStore) insert(userID uint, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[userID] = append(m.created[userID], at)
}

func (m *memStore) insertWithinQuota(userID uint, at time.Time, w Window, limit int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countLocked(userID, w.Start, w.End) >= limit {
		return false
	}
	m.created[userID] = append(m.created[userID], at)
	return true
}
