package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"glamai-server-go/internal/domain/eventbus"
	"glamai-server-go/internal/platform/logging"
)

// Store holds the current session in memory. The token comes from
// the backend and is never verified here; the backend signed it and
// only the backend can check the signature. Expiry is readable from
// the claims without the key, so validity checks use that.
type Store struct {
	bus    *eventbus.Bus
	logger *logging.Logger

	mu    sync.RWMutex
	token string
	user  *User
}

// NewStore builds an empty session store. Change notifications go
// through bus when one is given.
func NewStore(bus *eventbus.Bus, logger *logging.Logger) *Store {
	return &Store{bus: bus, logger: logger}
}

// Set installs a freshly authenticated session and notifies observers.
func (s *Store) Set(token string, user User) {
	s.mu.Lock()
	s.token = token
	copied := user
	s.user = &copied
	s.mu.Unlock()

	s.logger.DebugTag("AUTH", "session established for %s", user.ID)
	s.publish(true, &user)
}

// Clear drops the session. Clearing an empty store is a no-op and
// publishes nothing.
func (s *Store) Clear() {
	s.mu.Lock()
	hadSession := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if hadSession {
		s.logger.DebugTag("AUTH", "session cleared")
		s.publish(false, nil)
	}
}

// Current returns the stored token and user. The user is nil when no
// session is held.
func (s *Store) Current() (string, *User) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return s.token, nil
	}
	copied := *s.user
	return s.token, &copied
}

// IsValid reports whether a session is held and its token has not
// expired. A token without an exp claim counts as expired.
func (s *Store) IsValid() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return false
	}
	expiry, err := tokenExpiry(token)
	if err != nil {
		return false
	}
	return time.Now().Before(expiry)
}

// OnChange registers an observer for session changes and returns its
// unsubscribe function. Every observer must unsubscribe itself when
// its screen goes away; nothing else releases the registration.
func (s *Store) OnChange(fn func(eventbus.AuthEventData)) (func(), error) {
	if s.bus == nil {
		return func() {}, nil
	}
	return s.bus.Subscribe(eventbus.EventAuthChanged, fn)
}

func (s *Store) publish(authenticated bool, user *User) {
	if s.bus == nil {
		return
	}

	data := eventbus.AuthEventData{Authenticated: authenticated}
	if user != nil {
		data.UserID = user.ID
		data.Email = user.Email
	}
	s.bus.Publish(eventbus.EventAuthChanged, data)
}

// tokenExpiry reads the exp claim without verifying the signature.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, jwt.ErrTokenRequiredClaimMissing
	}
	return expiry.Time, nil
}
