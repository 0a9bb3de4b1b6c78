package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"patientdocs/internal/auth"
	"patientdocs/internal/model"
	"patientdocs/internal/repository"
)

const minPasswordLen = 6

// RegisterInput describes a new doctor or patient account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Contact  string `json:"contact"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// AuthService registers and authenticates accounts.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenIssuer signs session tokens for users.
type TokenIssuer interface {
	Generate(u *model.User) (string, time.Time, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	now    func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{users: users, tokens: tokens, now: time.Now}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" {
		return nil, validationError("username is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, validationError("invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, validationError("password must be at least %d characters", minPasswordLen)
	}
	principal, err := model.NewPrincipal(model.Role(in.Role), uuid.New().String(), "")
	if err != nil {
		return nil, validationError("invalid role specified")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &model.User{
		ID:           principal.UserID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         principal.Role(),
		Contact:      in.Contact,
		CreatedAt:    now,
	}

	type created struct {
		user *model.User
		err  error
	}
	res := model.MatchPrincipal(principal,
		func(model.Doctor) created {
			stored, err := s.users.Create(ctx, u)
			return created{stored, err}
		},
		func(model.PatientPrincipal) created {
			rec := &model.Patient{ID: uuid.New().String(), Name: u.Username, Email: u.Email, CreatedAt: now}
			stored, err := s.users.CreatePatientAccount(ctx, u, rec)
			return created{stored, err}
		},
	)
	stored, err := res.user, res.err
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(stored)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Generate(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}
