package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/models"
	"publicseva-be/repositories"
	authUtils "publicseva-be/utils"
)

type AuthService struct {
	users  repositories.UserRepository
	tokens *authUtils.TokenManager
}

func NewAuthService(users repositories.UserRepository, tokens *authUtils.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// SignupRequest is the public registration payload. There is no role field:
// every self-registered account is a citizen.
type SignupRequest struct {
	Name     string           `json:"name" validate:"required,max=100"`
	Email    string           `json:"email" validate:"required,emailaddr"`
	Password string           `json:"password" validate:"required,min=6"`
	Phone    string           `json:"phone"`
	Address  string           `json:"address"`
	Location *models.GeoPoint `json:"location"`
	State    string           `json:"state"`
	District string           `json:"district"`
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = models.NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Location != nil {
		if !req.Location.Valid() {
			return nil, apperrors.Validation("Location coordinates must be [longitude, latitude]")
		}
		req.Location.Type = "Point"
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("User already exists with this email")
	} else if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	return s.createUser(ctx, &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     models.RoleCitizen,
		Address:  req.Address,
		Location: req.Location,
		State:    req.State,
		District: req.District,
	})
}

func (s *AuthService) createUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	now := time.Now()
	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now

	// the unique index still catches a concurrent signup with the same email
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and issues a token. Unknown email, wrong
// password and disabled accounts all produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.ComparePassword(password) || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// EnsureAdmin creates the bootstrap admin account if no user holds that email yet.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	if len(password) < 6 {
		return false, apperrors.Validation("password must be at least 6 characters")
	}
	if name == "" {
		name = "Administrator"
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !apperrors.Is(err, apperrors.KindNotFound) {
		return false, err
	}

	_, err := s.createUser(ctx, &models.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if apperrors.Is(err, apperrors.KindConflict) {
		return false, nil
	}
	return err == nil, err
}
