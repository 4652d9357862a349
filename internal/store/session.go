package store

import (
	"context"
	"errors"

	"github.com/tgienger/kanban/internal/models"
)

var errNoIdentity = errors.New("no identity provider configured")

// Login signs in through the identity provider and installs the session
// user. It reports whether the credentials were accepted.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	sess, err := s.authenticate(func(p IdentityProvider) (models.Session, error) {
		return p.Login(ctx, email, password)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail("Login failed", err)
		return false
	}
	if sess.User.LastLoginAt == nil {
		now := s.now().UTC()
		sess.User.LastLoginAt = &now
	}
	s.install(ctx, sess, "Login failed")
	return true
}

// Register creates an account through the identity provider and signs it
// in.
func (s *Store) Register(ctx context.Context, username, email, password string) bool {
	sess, err := s.authenticate(func(p IdentityProvider) (models.Session, error) {
		return p.Register(ctx, username, email, password)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail("Registration failed", err)
		return false
	}
	s.install(ctx, sess, "Registration failed")
	return true
}

// Logout clears the session user.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.log.Infof("Event ID: USER_LOGGED_OUT, Description: %s", s.user.ID)
	s.user = nil
	s.token = ""
	s.commit(ctx, "Failed to log out")
}

// Token returns the token of the session established by this process, or
// "" when there is none.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// authenticate runs call without holding the lock so IsLoading is
// observable while the provider works.
func (s *Store) authenticate(call func(IdentityProvider) (models.Session, error)) (models.Session, error) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return models.Session{}, errNoIdentity
	}
	s.pending++
	p := s.identity
	s.mu.Unlock()

	sess, err := call(p)

	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
	return sess, err
}

// install sets the session user and persists it. Callers hold s.mu.
func (s *Store) install(ctx context.Context, sess models.Session, failure string) {
	user := sess.User
	s.user = &user
	s.token = sess.Token
	s.log.Infof("Event ID: USER_SIGNED_IN, Description: %s", user.ID)
	s.commit(ctx, failure)
}
