package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"claude-chat/internal/security"
	"github.com/google/uuid"
)

// Session binds an opaque token to an authenticated user for a fixed
// window. The Anthropic credential travels with the session because each
// chat turn re-exports it to the CLI process.
type Session struct {
	UserID     uuid.UUID
	Credential string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type entry struct {
	userID              uuid.UUID
	encryptedCredential string
	createdAt           time.Time
	expiresAt           time.Time
}

// Store is an in-memory session table. Sessions deliberately do not
// survive a restart: every active user re-logs in after a deploy.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]entry
	duration  time.Duration
	encryptor *security.Encryptor

	// now is swappable so expiry behavior is testable without sleeping.
	now func() time.Time
}

// NewStore creates a session store. The encryptor protects the provider
// credential at rest in process memory.
func NewStore(duration time.Duration, encryptor *security.Encryptor) *Store {
	return &Store{
		sessions:  make(map[string]entry),
		duration:  duration,
		encryptor: encryptor,
		now:       time.Now,
	}
}

// Create registers a new session and returns its token and expiry.
func (s *Store) Create(userID uuid.UUID, credential string) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	encrypted, err := s.encryptor.EncryptString(credential)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encrypt credential: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.duration)

	s.mu.Lock()
	s.sessions[token] = entry{
		userID:              userID,
		encryptedCredential: encrypted,
		createdAt:           now,
		expiresAt:           expiresAt,
	}
	s.mu.Unlock()

	return token, expiresAt, nil
}

// Validate resolves a token to its session. A token is valid through its
// exact expiry instant and invalid strictly after it. Expired entries are
// removed on lookup. Expiry is fixed-window: validation never extends it.
func (s *Store) Validate(token string) (*Session, bool) {
	s.mu.Lock()
	e, ok := s.sessions[token]
	if ok && s.now().After(e.expiresAt) {
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, false
	}

	credential, err := s.encryptor.DecryptString(e.encryptedCredential)
	if err != nil {
		return nil, false
	}

	return &Session{
		UserID:     e.userID,
		Credential: credential,
		CreatedAt:  e.createdAt,
		ExpiresAt:  e.expiresAt,
	}, true
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanupExpired removes all expired sessions and reports how many.
func (s *Store) CleanupExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Clear drops every session. Used at shutdown and in test teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	s.sessions = make(map[string]entry)
	s.mu.Unlock()
}

// Len reports the number of live entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetClock overrides the store's time source for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
