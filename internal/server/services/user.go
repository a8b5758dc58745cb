// Package services contains server-side business logic. This file implements
// UserService, which registers accounts, checks credentials and issues
// session tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// TokenIssuer mints a session token for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	User  *models.User
	Token string
}

// UserService provides authentication-related operations:
// - Register: create users with a bcrypt password hash
// - Login: verify credentials and mint a token
// - Resolve: look up the user behind an authenticated email
type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	logger      logging.Logger
	hashCost    int
	dummyHash   []byte
	now         func() time.Time
}

// NewUserService constructs a UserService. cost is the bcrypt cost; values
// outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewUserService(m repomanager.RepositoryManager, tokens TokenIssuer, l logging.Logger, cost int) (*UserService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &UserService{
		repomanager: m,
		tokens:      tokens,
		logger:      l.With("module", "user_service"),
		hashCost:    cost,
		dummyHash:   dummy,
		now:         time.Now,
	}, nil
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if err := validation.Validate(email, validation.Required, validation.Match(emailPattern)); err != nil {
		return nil, common.ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.repomanager.Conn())

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrEmailAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrValidation)
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  name,
		CreatedAt:    s.now().UTC(),
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies credentials and returns the user with a fresh token.
// Unknown emails and wrong passwords both yield common.ErrInvalidCredentials
// after a comparable amount of work.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Resolve returns the user registered under email.
func (s *UserService) Resolve(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}
