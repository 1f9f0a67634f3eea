package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/amaumene/streambox/internal/constants"
	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/pkg/logger"
	"github.com/amaumene/streambox/pkg/ratelimiter"
)

const (
	adminRole   = "admin"
	adminIssuer = "streambox"
)

// AdminClaims are the claims carried by an admin session token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthConfig configures NewAuth. BcryptCost defaults to bcrypt.DefaultCost.
type AuthConfig struct {
	Password   string
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	Limiter    ratelimiter.RateLimiter
}

// Auth issues and checks the single admin's session tokens.
type Auth struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	limiter      ratelimiter.RateLimiter
	logger       logger.Logger
	now          func() time.Time
}

func NewAuth(cfg AuthConfig, log logger.Logger) (*Auth, error) {
	if cfg.Password == "" || cfg.Secret == "" {
		return nil, apperrors.NewConfigurationError("admin password and token secret are required", nil)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = constants.AdminTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.New()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to hash admin password", err)
	}

	return &Auth{
		passwordHash: hash,
		secret:       []byte(cfg.Secret),
		ttl:          cfg.TokenTTL,
		limiter:      cfg.Limiter,
		logger:       log,
		now:          time.Now,
	}, nil
}

// Login checks the password and returns a signed admin token. Attempts are
// throttled per clientKey, usually the caller's IP.
func (a *Auth) Login(clientKey, password string) (string, error) {
	if a.limiter != nil && !a.limiter.Allow(clientKey) {
		a.logger.Warnf("[Auth] login throttled for %s", clientKey)
		return "", apperrors.ErrLoginThrottled
	}

	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		a.logger.Warn("[Auth] rejected admin login")
		return "", apperrors.New(apperrors.KindUnauthorized, "invalid password", nil)
	}

	now := a.now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminRole,
			Issuer:    adminIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        uuid.New().String(),
		},
		Role: adminRole,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	a.logger.Info("[Auth] admin logged in")
	return token, nil
}

// Verify checks a token's signature, expiry and role. Expired tokens yield
// ErrTokenExpired, everything else ErrUnauthorized.
func (a *Auth) Verify(tokenStr string) (*AdminClaims, error) {
	if tokenStr == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case err != nil || !token.Valid:
		return nil, apperrors.New(apperrors.KindUnauthorized, "invalid token", err)
	case claims.Role != adminRole:
		return nil, apperrors.New(apperrors.KindUnauthorized, "not an admin token", nil)
	}
	return claims, nil
}
