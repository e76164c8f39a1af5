// Package auth signs shoppers up and in. A successful call returns a short
// lived JWT and an opaque refresh token bound to the token's jti.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ojastore/storefront-backend/internal/users"
	pkgAuth "github.com/ojastore/storefront-backend/pkg/auth"
	"github.com/ojastore/storefront-backend/pkg/auth/session"
	"github.com/ojastore/storefront-backend/pkg/config"
	"github.com/ojastore/storefront-backend/pkg/db"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/security"
)

const minPasswordLength = 6

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

type service struct {
	ServiceParams
	clock func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.UserRepo == nil:
		return nil, errors.New("auth: user repository is required")
	case params.SessionManager == nil:
		return nil, errors.New("auth: session manager is required")
	}
	return &service{ServiceParams: params, clock: func() time.Time { return time.Now().UTC() }}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func canonicalEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// findUser reports a missing account as (nil, nil).
func (s *service) findUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

// Register creates the account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := canonicalEmail(req.Email)
	problems := map[string]string{}
	if email == "" {
		problems["email"] = "is required"
	}
	if len(req.Password) < minPasswordLength {
		problems["password"] = "must be at least 6 characters"
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(problems)
	}

	existing, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := security.HashPassword(req.Password, s.PasswordConfig)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	dto := users.CreateUserDTO{Email: email, PasswordHash: hash}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			dto.Name = &name
		}
	}
	user, err := s.UserRepo.Create(ctx, dto)
	if err != nil {
		// A concurrent signup can still win the unique index.
		if classified := db.ClassifyError(err, "create user"); pkgerrors.Is(classified, pkgerrors.CodeConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return s.signIn(ctx, user)
}

// Login never reveals whether the email or the password was wrong.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := canonicalEmail(req.Email)
	if email == "" {
		return nil, invalidCredentials()
	}
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalidCredentials()
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	case !ok:
		return nil, invalidCredentials()
	}
	return s.signIn(ctx, user)
}

func (s *service) signIn(ctx context.Context, user *models.User) (*LoginResponse, error) {
	at := s.clock()
	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &at

	jti := session.NewAccessID()
	access, err := pkgAuth.MintAccessToken(s.JWTConfig, at, pkgAuth.AccessTokenPayload{UserID: user.ID, Email: user.Email, JTI: jti})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refresh, err := s.SessionManager.Generate(ctx, jti)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return &LoginResponse{AccessToken: access, RefreshToken: refresh, User: users.FromModel(user)}, nil
}
