package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"laundry-api/internal/core/auth"
	"laundry-api/internal/domain"
	"laundry-api/pkg/utils"
)

type Authenticator struct {
	tokens *auth.JWTer
	users  domain.UserRepository
	log    *zap.Logger
}

func NewAuthenticator(tokens *auth.JWTer, users domain.UserRepository, log *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, log: log}
}

// Authorize verifies token, loads its user and checks the user holds role
// (any role when role is empty). Every failure is domain.ErrUnauthorized;
// the cause is only logged.
func (a *Authenticator) Authorize(ctx context.Context, token, role string) (*domain.User, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, a.deny("token rejected", zap.Error(err))
	}
	u, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, a.deny("user lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
	}
	if u == nil {
		return nil, a.deny("user not found", zap.Uint("user_id", claims.UserID))
	}
	if role != "" && u.Role != role {
		return nil, a.deny("role mismatch", zap.Uint("user_id", u.ID), zap.String("role", u.Role), zap.String("want", role))
	}
	return u, nil
}

func (a *Authenticator) deny(reason string, fields ...zap.Field) error {
	a.log.Debug("authorization denied: "+reason, fields...)
	return domain.ErrUnauthorized
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates a non-admin account and signs a token for it.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*Session, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return a.session(u)
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return a.session(u)
}

// EnsureAdmin creates an admin account for email, or promotes and resets the
// password of an existing one.
func (a *Authenticator) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	email = normalizeEmail(email)
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	if u != nil {
		u.Role = domain.RoleAdmin
		u.PasswordHash = hash
		if name != "" {
			u.Name = name
		}
		return u, false, a.users.Update(ctx, u)
	}
	u = &domain.User{Name: name, Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	return u, true, a.users.Create(ctx, u)
}

// IssueFor signs a token for an existing user.
func (a *Authenticator) IssueFor(ctx context.Context, email string) (*Session, error) {
	u, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return a.session(u)
}

func (a *Authenticator) session(u *domain.User) (*Session, error) {
	tok, err := a.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: tok, User: u}, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
