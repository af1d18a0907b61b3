package usecase

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminAuthenticator is the capability the rest of the system depends on:
// handlers and middleware ask "is this login valid" and "is this token
// authorized" without knowing how either is decided.
type AdminAuthenticator interface {
	Login(username, password string) (string, error)
	Verify(token string) bool
}

type adminAuthenticator struct {
	username     string
	passwordHash []byte
	tokenTTL     time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time

	now func() time.Time
	log *logrus.Logger
}

// NewAdminAuthenticator hashes the configured password once at construction
// so the plaintext is not kept around for comparisons.
func NewAdminAuthenticator(username, password string, tokenTTL time.Duration, logger *logrus.Logger) (AdminAuthenticator, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin credentials cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &adminAuthenticator{
		username:     username,
		passwordHash: hash,
		tokenTTL:     tokenTTL,
		sessions:     make(map[string]time.Time),
		now:          time.Now,
		log:          logger,
	}, nil
}

func (a *adminAuthenticator) Login(username, password string) (string, error) {
	if username != a.username {
		a.log.Warnf("Use Case: Admin login failed for unknown username '%s'", username)
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			a.log.Warn("Use Case: Admin login failed - incorrect password")
			return "", ErrInvalidCredentials
		}
		a.log.Errorf("Use Case: Error comparing admin password hash: %v", err)
		return "", fmt.Errorf("internal error during authentication: %w", err)
	}

	token := uuid.NewString()
	expiry := a.now().Add(a.tokenTTL)

	a.mu.Lock()
	a.sessions[token] = expiry
	a.mu.Unlock()

	a.log.Infof("Use Case: Admin login successful, session expires at %s", expiry.Format(time.RFC3339))
	return token, nil
}

func (a *adminAuthenticator) Verify(token string) bool {
	if token == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	expiry, ok := a.sessions[token]
	if !ok {
		return false
	}
	if a.now().After(expiry) {
		delete(a.sessions, token)
		a.log.Info("Use Case: Rejected expired admin session token")
		return false
	}
	return true
}
