package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/letterstacks/internal/dependencies/clock"
	"github.com/mcoot/letterstacks/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Issuer is written into every token
const Issuer = "letterstacks"

// Claims identify the session a token grants access to
type Claims struct {
	SessionID string `json:"sid"`
	Profile   string `json:"profile,omitempty"`
	jwt.RegisteredClaims
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs tokens. When empty a random secret is generated, so
	// tokens do not survive a restart.
	Secret   []byte
	TokenTTL time.Duration
	Logger   *slog.Logger
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 24 * time.Hour,
	}
}

// Service issues and validates session access tokens
type Service struct {
	clock    clock.Clock
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

// New creates a new auth Service
func New(clock clock.Clock, cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("component", "auth"))

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	secret := cfg.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		logger.Warn("no token secret configured; using a random one")
	}

	return &Service{
		clock:    clock,
		secret:   secret,
		tokenTTL: cfg.TokenTTL,
		logger:   logger,
	}, nil
}

// Issue creates a signed token for a session
func (s *Service) Issue(id model.SessionID, profile string) (string, time.Time, error) {
	now := s.clock.Now()
	expires := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: string(id),
		Profile:   profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Validate parses a token and returns its claims
func (s *Service) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		s.logger.Debug("token rejected", slog.Any("error", err))
		return nil, ErrInvalidToken
	}
	if claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize validates a token and checks that it grants access to a session
func (s *Service) Authorize(tokenStr string, id model.SessionID) (*Claims, error) {
	claims, err := s.Validate(tokenStr)
	if err != nil {
		return nil, err
	}
	if model.SessionID(claims.SessionID) != id {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
