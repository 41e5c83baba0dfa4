package service

import (
	"context" // Request scoped calls
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"report_portal/internal/domain"  // Importing domain models
	"report_portal/internal/metrics" // Login counters
	"report_portal/internal/session" // Session records

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// dummyHash is compared when the username is unknown so both failure paths
// cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("report-portal-dummy-password"), bcrypt.DefaultCost)

// AuthService verifies credentials and manages sessions
type AuthService struct {
	users    UserStore
	sessions SessionStore
	metrics  *metrics.Metrics
}

// NewAuthService wires the credential and session stores
func NewAuthService(users UserStore, sessions SessionStore, m *metrics.Metrics) *AuthService {
	return &AuthService{users: users, sessions: sessions, metrics: m}
}

// Verify checks username/password and returns the session identity. Every
// failure, including store errors, is ErrInvalidCredentials to the caller.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*domain.SessionUser, error) {
	users, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username": username,    // Submitted username
			"error":    err.Error(), // Error message
		}).Error("Credential lookup failed")
		users = nil
	}
	if len(users) > 1 {
		logrus.WithField("username", username).Warn("Duplicate usernames in credential store")
	}
	hash := dummyHash
	if len(users) == 1 {
		hash = []byte(users[0].PasswordHash)
	}
	cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if len(users) != 1 || cmpErr != nil {
		s.metrics.IncLogin(metrics.ResultFailure)
		return nil, domain.ErrInvalidCredentials
	}
	s.metrics.IncLogin(metrics.ResultSuccess)
	return domain.NewSessionUser(&users[0]), nil
}

// Login verifies the credentials and opens a fresh session for the user
func (s *AuthService) Login(ctx context.Context, username, password string) (*session.Session, error) {
	user, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,   // Authenticated user
		"role":    user.Role, // Role granted
	}).Info("User logged in")
	return sess, nil
}

// Logout destroys the session entirely
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to destroy
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		if !errors.Is(err, domain.ErrSessionStore) {
			err = fmt.Errorf("%w: %w", domain.ErrSessionStore, err)
		}
		return err
	}
	return nil
}
