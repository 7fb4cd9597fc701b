package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/arenahub/arenahub-backend/internal/errs"
	"github.com/arenahub/arenahub-backend/internal/repository"
)

const adminSubject = "arenahub-admin"

// AdminService authenticates administrators and performs audited
// leaderboard resets. The secret never leaves this struct: it is not
// logged and not echoed in any response.
type AdminService struct {
	audit    repository.AdminLog
	secret   []byte
	signKey  []byte
	tokenTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewAdminService constructs an AdminService. An empty secret disables
// all admin operations; an empty signKey disables token issuance while
// leaving password auth intact.
func NewAdminService(audit repository.AdminLog, secret, signKey []byte, tokenTTL time.Duration, log *zap.Logger) *AdminService {
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &AdminService{
		audit:    audit,
		secret:   secret,
		signKey:  signKey,
		tokenTTL: tokenTTL,
		log:      log,
		now:      time.Now,
	}
}

// Login verifies the administrator password and issues a short-lived
// HS256 token usable as a bearer credential for subsequent resets.
func (s *AdminService) Login(password string) (string, time.Time, error) {
	if err := s.verifyPassword(password); err != nil {
		return "", time.Time{}, err
	}
	if len(s.signKey) == 0 {
		return "", time.Time{}, fmt.Errorf("token issuance disabled: %w", errs.ErrInvalidCredential)
	}
	now := s.now()
	exp := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Reset clears the game's leaderboard and appends one audit entry,
// returning the server timestamp (epoch ms) recorded in the log.
// Credential is either the configured password or a bearer token from
// Login; the clear and the audit append are transactional in the store.
func (s *AdminService) Reset(ctx context.Context, game, password, bearer string) (int64, error) {
	if game == "" {
		return 0, fmt.Errorf("missing game: %w", errs.ErrValidation)
	}
	if err := s.authorize(password, bearer); err != nil {
		return 0, err
	}

	at := s.now().UnixMilli()
	if err := s.audit.Reset(ctx, game, at); err != nil {
		return 0, err
	}
	s.log.Info("leaderboard reset", zap.String("game", game), zap.Int64("at", at))
	return at, nil
}

// LastReset returns the most recent reset timestamp for a game, or nil
// when the game has never been reset.
func (s *AdminService) LastReset(ctx context.Context, game string) (*int64, error) {
	if game == "" {
		return nil, fmt.Errorf("missing game: %w", errs.ErrValidation)
	}
	return s.audit.LastReset(ctx, game)
}

// authorize accepts a bearer token when present, the password otherwise.
func (s *AdminService) authorize(password, bearer string) error {
	if bearer != "" {
		return s.verifyToken(bearer)
	}
	return s.verifyPassword(password)
}

func (s *AdminService) verifyPassword(password string) error {
	if password == "" {
		return errs.ErrMissingCredential
	}
	// With no secret configured every non-empty password must fail;
	// without this guard two empty slices compare equal.
	if len(s.secret) == 0 {
		return errs.ErrInvalidCredential
	}
	if subtle.ConstantTimeCompare([]byte(password), s.secret) != 1 {
		return errs.ErrInvalidCredential
	}
	return nil
}

func (s *AdminService) verifyToken(bearer string) error {
	if len(s.signKey) == 0 {
		return errs.ErrInvalidCredential
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(bearer, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject != adminSubject {
		return errs.ErrInvalidCredential
	}
	return nil
}
