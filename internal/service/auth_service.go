package service

import (
	"context"
	"errors"
	"strings"

	"stockswift/internal/dto"
	"stockswift/internal/model"
	"stockswift/internal/repository"
	"stockswift/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sentinel errors carry the exact client-facing message; handlers map them to
// HTTP statuses. Login deliberately collapses "unknown email" and "wrong
// password" into one message.
var (
	ErrMissingFields      = errors.New("Name, email and password are required")
	ErrPasswordTooShort   = errors.New("Password must be at least 6 characters")
	ErrEmailTaken         = errors.New("Email already in use")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotFound       = errors.New("User not found")
)

const bcryptCost = 12

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Whoami(ctx context.Context, userID string) (*dto.MeResponse, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *token.Service
}

func NewAuthService(repo repository.UserRepository, tokens *token.Service) AuthService {
	return &authService{repo: repo, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < 6 {
		return nil, ErrPasswordTooShort
	}

	// Friendly pre-check; the unique index on users.email is the real guard.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Two concurrent signups can both pass the pre-check; the index
		// rejects the loser and it gets the same conflict message.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Message: "Signup successful",
		Token:   tok,
		User:    dto.AuthUser{ID: user.ID.String(), Name: user.Name, Email: user.Email},
	}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Message: "Login successful",
		Token:   tok,
		User:    dto.AuthUser{ID: user.ID.String(), Name: user.Name, Email: user.Email},
	}, nil
}

// Whoami re-fetches the user by the token's user id rather than trusting the
// stale token fields. A valid token for a deleted account is ErrUserNotFound,
// a distinct condition from unauthenticated.
func (s *authService) Whoami(ctx context.Context, userID string) (*dto.MeResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &dto.MeResponse{
		User: dto.MeUser{
			ID:        user.ID.String(),
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
	}, nil
}
