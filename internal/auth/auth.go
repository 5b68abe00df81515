// Package auth implements the single-account login: a bcrypt-checked
// credential that yields HS256 session tokens, with logout revoking a token
// until it would have expired anyway.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kepngern/internal/log"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRevoked            = errors.New("token revoked")
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Config struct {
	Username     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

type Authenticator struct {
	username string
	hash     []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func New(cfg Config, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.Discard()
	}
	return &Authenticator{
		username: cfg.Username,
		hash:     []byte(cfg.PasswordHash),
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentAuth),
		revoked:  make(map[string]time.Time),
	}
}

// HashPassword returns a bcrypt hash suitable for AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Login checks the credential and issues a session token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	// The hash is always compared so a wrong username costs the same time.
	pwErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	if pwErr != nil || !userOK {
		a.logger.WarnContext(ctx, "Login rejected", log.FieldOperation, log.OpLogin, log.FieldUsername, username)
		return Session{}, ErrInvalidCredentials
	}

	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   a.username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	a.logger.InfoContext(ctx, "Login succeeded", log.FieldOperation, log.OpLogin, log.FieldUsername, a.username)
	return Session{Token: token, Username: a.username, ExpiresAt: expires}, nil
}

// Verify parses token and returns its claims when it is valid, unexpired and
// not logged out.
func (a *Authenticator) Verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject != a.username || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	a.mu.Lock()
	_, revoked := a.revoked[claims.ID]
	a.mu.Unlock()
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Logout revokes the token. Revocations are forgotten once the token
// expires, since Verify rejects it from then on anyway.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	claims, err := a.Verify(token)
	if err != nil {
		return err
	}

	now := a.now()
	a.mu.Lock()
	for id, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, id)
		}
	}
	a.revoked[claims.ID] = claims.ExpiresAt.Time
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "Logged out", log.FieldOperation, log.OpLogout, log.FieldUsername, claims.Subject)
	return nil
}

// IsLoggedIn reports whether token is a live session.
func (a *Authenticator) IsLoggedIn(token string) bool {
	_, err := a.Verify(token)
	return err == nil
}
