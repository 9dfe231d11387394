package session

import (
	"context"
	"fmt"
	"time"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
)

// Sessions mirrored on refresh keep a 7 day expiry so abandoned
// sessions eventually age out of the cache.
const sessionTTL = 7 * 24 * time.Hour

// TokenPair is one issued access/refresh credential pair. TTLs are
// carried so the HTTP layer can set matching cookie lifetimes.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// Manager owns the session/token lifecycle: token minting, refresh and
// the cache mirror of the user record.
type Manager struct {
	store         Store
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(store Store, accessSecret, refreshSecret string, accessExpireMin, refreshExpireDay int) *Manager {
	return &Manager{
		store:         store,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessExpireMin) * time.Minute,
		refreshTTL:    time.Duration(refreshExpireDay) * 24 * time.Hour,
	}
}

func (m *Manager) Store() Store {
	return m.store
}

// Issue mints a token pair for user and overwrites the cached snapshot.
// Login writes the snapshot without expiry; the TTL is applied on
// refresh, matching the lifecycle of the session mirror.
func (m *Manager) Issue(ctx context.Context, user *model.User) (*TokenPair, error) {
	pair, err := m.mint(user.ID.String())
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, user); err != nil {
		return nil, apperror.Upstream(err)
	}
	return pair, nil
}

// Renew verifies the refresh token, looks the session up in the cache
// and mints a fresh pair without re-reading the primary store. A cache
// miss forces a re-login.
func (m *Manager) Renew(ctx context.Context, refreshToken string) (*TokenPair, *model.User, error) {
	claims, err := parseToken(refreshToken, m.refreshSecret)
	if err != nil {
		return nil, nil, apperror.Auth("could not refresh token")
	}

	user, err := m.store.Lookup(ctx, claims.Subject)
	if err != nil {
		return nil, nil, apperror.Upstream(err)
	}
	if user == nil {
		return nil, nil, apperror.Auth("please login to access this resource")
	}

	pair, err := m.mint(user.ID.String())
	if err != nil {
		return nil, nil, err
	}
	if err := m.store.SaveTTL(ctx, user, sessionTTL); err != nil {
		return nil, nil, apperror.Upstream(err)
	}

	return pair, user, nil
}

// VerifyAccess parses an access token and returns the user id claim.
func (m *Manager) VerifyAccess(token string) (string, error) {
	claims, err := parseToken(token, m.accessSecret)
	if err != nil {
		return "", apperror.Auth("invalid access token")
	}
	return claims.Subject, nil
}

func (m *Manager) mint(subject string) (*TokenPair, error) {
	access, err := signToken(subject, m.accessSecret, m.accessTTL)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	refresh, err := signToken(subject, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    m.accessTTL,
		RefreshTTL:   m.refreshTTL,
	}, nil
}

func signToken(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(tokenStr string, secret []byte) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
