package memory

import (
	"sync"
	"time"

	"run-coach-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps per-user conversation state in memory, keyed by
// user ID. Entries expire after an hour of inactivity; a fresh Session is
// built on the next turn.
type SessionRepository struct {
	mu       sync.Mutex
	cache    *cache.Cache
	debounce time.Duration
}

func NewSessionRepository(debounce time.Duration) *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache:    c,
		debounce: debounce,
	}
}

// GetOrCreate returns the live session for a user, creating one if absent.
// The lock makes concurrent first-turns converge on a single session.
func (r *SessionRepository) GetOrCreate(userID string) *store.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(userID); found {
		s := x.(*store.Session)
		r.cache.Set(userID, s, cache.DefaultExpiration)
		return s
	}
	s := store.NewSession(userID, r.debounce)
	r.cache.Set(userID, s, cache.DefaultExpiration)
	return s
}

func (r *SessionRepository) Get(userID string) (*store.Session, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
