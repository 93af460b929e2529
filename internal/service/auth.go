package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	email = NormalizeEmail(email)

	_, err := s.Repo.UserByEmail(ctx, email)
	if err == nil {
		l.Warn("register_error", "status", 409, "reason", "email already registered")
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lookup user: %v", ErrUpstream, err)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("%w: hash password: %v", ErrUpstream, err)
	}

	user := &models.User{Email: email, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: create user: %v", ErrUpstream, err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*tokens.Pair, error) {
	email = NormalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	user, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("login failed", "status", 401, "reason", "unknown email")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup user: %v", ErrUpstream, err)
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "status", 401, "reason", "wrong password")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	pair, refresh, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("%w: store refresh token: %v", ErrUpstream, err)
	}
	return pair, nil
}

// Refresh rotates a refresh token. Each refresh token can be used once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token subject", ErrUnauthorized)
	}

	user, err := s.Repo.UserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup user: %v", ErrUpstream, err)
	}

	pair, next, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	err = s.Repo.RotateRefreshToken(ctx, claims.ID, next)
	switch {
	case errors.Is(err, repo.ErrTokenRevoked), errors.Is(err, gorm.ErrRecordNotFound):
		logging.FromContext(ctx).Warn("refresh rejected", "status", 401, "reason", err.Error(), "user_id", userID)
		return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthorized)
	case err != nil:
		return nil, fmt.Errorf("%w: rotate refresh token: %v", ErrUpstream, err)
	}
	return pair, nil
}

// Logout revokes the refresh token. Unparseable tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil
	}
	if err := s.Repo.RevokeRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: revoke refresh token: %v", ErrUpstream, err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)

	access, err := tokens.SignAccess(user.ID.String(), user.Email, accessExp, s.JWTSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sign access token: %v", ErrUpstream, err)
	}
	refresh, jti, err := tokens.SignRefresh(user.ID.String(), refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sign refresh token: %v", ErrUpstream, err)
	}

	pair := &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}
	stored := &models.RefreshToken{
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(refresh),
		UserID:    user.ID,
		ExpiresAt: refreshExp.Unix(),
	}
	return pair, stored, nil
}
