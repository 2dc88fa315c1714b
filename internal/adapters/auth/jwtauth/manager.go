package jwtauth

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"vet-clinic-api/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid or expired")
)

type claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager emite y verifica tokens HS256.
// Implementa auth.TokenIssuer y auth.TokenVerifier.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Options struct {
	Secret []byte
	TTL    time.Duration
}

func New(opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: opts.Secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewFromEnv crea el manager desde env:
// - JWT_SECRET (default de dev, nunca usar en prod)
// - JWT_TTL (Go duration, default 24h)
func NewFromEnv() *Manager {
	secret := os.Getenv("JWT_SECRET")
	if strings.TrimSpace(secret) == "" {
		secret = "vet_clinic_dev_secret"
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}

	return New(Options{Secret: []byte(secret), TTL: ttl})
}

func (m *Manager) Issue(ctx context.Context, c auth.Claims) (string, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return "", errors.New("claims missing user id")
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   c.UserID,
		Username: c.Username,
		Roles:    c.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(ctx context.Context, tokenStr string) (auth.Claims, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	if strings.TrimSpace(c.UserID) == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	return auth.Claims{
		UserID:   c.UserID,
		Username: c.Username,
		Roles:    c.Roles,
	}, nil
}
