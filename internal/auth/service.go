package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"uia-atlas/atlas-portal/pkg/catalog"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	repo   Repository
	tokens *TokenIssuer
	logger *zap.Logger
}

func NewService(repo Repository, tokens *TokenIssuer, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Login checks a password and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return &LoginResponse{AccessToken: token, TokenType: "bearer", User: u}, nil
}

// Authenticate resolves a bearer token to a live account.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	id, _, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.user(ctx, id)
}

func (s *Service) user(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// EnsureUser creates the account, or resets its password and role when it
// already exists.
func (s *Service) EnsureUser(ctx context.Context, email, password string, role catalog.Role) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		existing.PasswordHash = string(hash)
		existing.Role = role
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return existing, nil
	}

	u := &User{Email: email, PasswordHash: string(hash), Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("User created", zap.String("user_id", u.ID.String()), zap.String("role", string(role)))
	return u, nil
}
