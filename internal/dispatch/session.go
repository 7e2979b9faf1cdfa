package dispatch

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSessionTTL  = 5 * time.Minute
	DefaultMaxSessions = 1000
)

// SessionStore keeps conversation state for a bounded number of conversations.
// Entries idle for longer than the TTL are gone.
type SessionStore struct {
	cache *expirable.LRU[string, Session]
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionStore creates a store. now defaults to time.Now.
func NewSessionStore(size int, ttl time.Duration, now func() time.Time) *SessionStore {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		cache: expirable.NewLRU[string, Session](size, nil, ttl),
		ttl:   ttl,
		now:   now,
	}
}

// Get returns the live session of a conversation. Expiry is checked against
// the store clock on every access.
func (s *SessionStore) Get(id string) (Session, bool) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return Session{}, false
	}
	if sess.Expired(s.now(), s.ttl) {
		s.cache.Remove(id)
		return Session{}, false
	}
	return sess, true
}

// Put stores sess and marks it active now.
func (s *SessionStore) Put(sess Session) {
	now := s.now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.LastInteraction = now
	s.cache.Add(sess.ConversationID, sess)
}

func (s *SessionStore) Delete(id string) {
	s.cache.Remove(id)
}

func (s *SessionStore) Len() int { return s.cache.Len() }
