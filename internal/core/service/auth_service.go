package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// AuthService implements sign-on, token refresh, validation and sign-off.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.RefreshSessionStore
	audit      ports.AuditRecorder
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.RefreshSessionStore,
	audit ports.AuditRecorder,
	jwtSecret string,
	accessTTL, refreshTTL time.Duration,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		audit:      audit,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Login checks the credentials and opens a refresh session. Unknown users
// yield domain.ErrUserNotFound, a wrong password domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*domain.AuthResult, error) {
	userID = domain.NormalizeUserID(userID)
	if userID == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Save(ctx, sessionID, user.UserID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("login: save refresh session: %w", err)
	}

	access, err := s.generateToken(user, sessionID, tokenUseAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, sessionID, tokenUseRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	s.record(user.UserID, domain.AuditSignOn, sessionID)

	return &domain.AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL / time.Second),
		User:         user,
	}, nil
}

// Refresh issues a new access token for a live refresh session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrMissingCredentials
	}

	claims, err := s.parseToken(refreshToken, tokenUseRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkSession(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	access, err := s.generateToken(user, claims.SessionID, tokenUseAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL / time.Second),
		User:         user,
	}, nil
}

// Validate checks an access token and that its session has not been revoked.
func (s *AuthService) Validate(ctx context.Context, token string) (*ports.TokenClaims, error) {
	claims, err := s.parseToken(token, tokenUseAccess)
	if err != nil {
		return nil, err
	}
	if err := s.checkSession(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the refresh session the access token belongs to.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.Validate(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("logout: revoke session: %w", err)
	}
	s.record(claims.UserID, domain.AuditSignOff, claims.SessionID)
	return nil
}

func (s *AuthService) checkSession(ctx context.Context, claims *ports.TokenClaims) error {
	owner, err := s.sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return err
		}
		return fmt.Errorf("lookup refresh session: %w", err)
	}
	if owner != claims.UserID {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (s *AuthService) record(userID string, action domain.AuditAction, ref string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		UserID:     userID,
		Action:     action,
		Reference:  ref,
		OccurredAt: s.now().UTC(),
	})
}

func (s *AuthService) generateToken(user *domain.User, sessionID, use string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":       user.UserID,
		"user_type": user.UserType,
		"role":      string(domain.RoleFromUserType(user.UserType)),
		"sid":       sessionID,
		"use":       use,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(token, use string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	tokenUse, _ := claims["use"].(string)
	userType, _ := claims["user_type"].(string)
	if sub == "" || sid == "" || tokenUse != use {
		return nil, domain.ErrTokenInvalid
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return &ports.TokenClaims{
		UserID:    sub,
		UserType:  userType,
		SessionID: sid,
		Use:       tokenUse,
		ExpiresAt: expiresAt,
	}, nil
}
