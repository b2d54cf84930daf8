// Package service holds the use cases behind the HTTP handlers. Services
// validate input, talk to the repository and return apperr types.
package service

import (
	"context"
	"errors"
	"strings"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/oauth"
	"invoice-service/internal/repository"
	"invoice-service/pkg/jwtutil"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Session is an authenticated owner with a freshly issued token.
type Session struct {
	Token string       `json:"token"`
	Owner *model.Owner `json:"owner"`
}

// AuthService registers owners and issues tokens.
type AuthService struct {
	repo *repository.Repository
	jwt  *jwtutil.JWTUtil
}

func NewAuthService(repo *repository.Repository, jwt *jwtutil.JWTUtil) *AuthService {
	return &AuthService{repo: repo, jwt: jwt}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates an owner with a hashed password and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	log := logger.FromContext(ctx)
	prometheus.RegisterCounter.Inc()

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return nil, apperr.Validation("email", "email and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		prometheus.RecordAuthError("password_hash_failed")
		return nil, err
	}

	owner := &model.Owner{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
	}
	if err := s.repo.CreateOwner(ctx, owner); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			prometheus.RecordAuthError("email_already_exists")
		}
		return nil, err
	}

	log.Info("Owner registered", zap.Uint("owner_id", owner.ID), zap.String("email", owner.Email))
	return s.issue(owner)
}

// Login checks a password and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromContext(ctx)
	prometheus.RecordLogin("password")

	owner, err := s.repo.GetOwnerByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn("Login for unknown email", zap.String("email", email))
			prometheus.RecordAuthError("user_not_found")
			return nil, apperr.Unauthorized("invalid_credentials", "invalid credentials")
		}
		return nil, err
	}
	if owner.Password == "" {
		prometheus.RecordAuthError("password_not_set")
		return nil, apperr.Unauthorized("invalid_credentials", "this account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(owner.Password), []byte(password)); err != nil {
		log.Warn("Invalid password", zap.String("email", owner.Email))
		prometheus.RecordAuthError("invalid_password")
		return nil, apperr.Unauthorized("invalid_credentials", "invalid credentials")
	}

	log.Info("Owner logged in", zap.Uint("owner_id", owner.ID))
	return s.issue(owner)
}

// GoogleLogin finds the owner linked to a Google profile, links an existing
// owner with the same email, or creates a new one.
func (s *AuthService) GoogleLogin(ctx context.Context, p *oauth.Profile) (*Session, error) {
	log := logger.FromContext(ctx)
	prometheus.RecordLogin("google")

	owner, err := s.repo.GetOwnerByGoogleID(ctx, p.ID)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		owner, err = s.linkOrCreate(ctx, p)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	log.Info("Owner logged in with Google", zap.Uint("owner_id", owner.ID))
	return s.issue(owner)
}

func (s *AuthService) linkOrCreate(ctx context.Context, p *oauth.Profile) (*model.Owner, error) {
	googleID := p.ID
	owner, err := s.repo.GetOwnerByEmail(ctx, normalizeEmail(p.Email))
	switch {
	case err == nil:
		owner.GoogleID = &googleID
		if owner.Avatar == "" {
			owner.Avatar = p.Picture
		}
		if owner.Name == "" {
			owner.Name = p.Name
		}
		if err := s.repo.UpdateOwner(ctx, owner); err != nil {
			return nil, err
		}
		return owner, nil
	case errors.Is(err, apperr.ErrNotFound):
		owner = &model.Owner{
			Name:     p.Name,
			Email:    normalizeEmail(p.Email),
			GoogleID: &googleID,
			Avatar:   p.Picture,
		}
		if err := s.repo.CreateOwner(ctx, owner); err != nil {
			return nil, err
		}
		return owner, nil
	default:
		return nil, err
	}
}

func (s *AuthService) issue(owner *model.Owner) (*Session, error) {
	token, err := s.jwt.GenerateToken(owner.Email, owner.ID)
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return nil, err
	}
	return &Session{Token: token, Owner: owner}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
