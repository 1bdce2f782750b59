package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
	accountDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/account"
	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateEmail = errors.New("duplicate email")

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*accountDatamodel.Account, error)
	GetByEmail(ctx context.Context, email string) (*accountDatamodel.Account, error)
	Create(ctx context.Context, account *accountDatamodel.Account) error
	Update(ctx context.Context, account *accountDatamodel.Account) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Service is the identity provider: credentials, sessions and account lifecycle.
type Service struct {
	repo              RepositoryAPI
	tokens            TokenGenerator
	bcryptCost        int
	minPasswordLength int
	logger            *slog.Logger
}

type Options struct {
	BCryptCost        int
	MinPasswordLength int
}

func NewService(repo RepositoryAPI, tokens TokenGenerator, opts Options, logger *slog.Logger) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	if opts.MinPasswordLength == 0 {
		opts.MinPasswordLength = 6
	}
	return &Service{
		repo:              repo,
		tokens:            tokens,
		bcryptCost:        opts.BCryptCost,
		minPasswordLength: opts.MinPasswordLength,
		logger:            logger,
	}
}

func (s *Service) MinPasswordLength() int {
	return s.minPasswordLength
}

func (s *Service) SignIn(ctx context.Context, dto LoginDTO) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByEmail(ctx, NormalizeEmail(dto.Email))
	if err != nil {
		s.logger.Error("failed to load account", "error", err)
		return nil, internal.NewDependencyError("failed to load account", internal.ErrCodeIdentityFailed, err)
	}
	if row == nil || !row.Confirmed {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	return s.issueSession(row.ID, row.Email)
}

func (s *Service) Refresh(ctx context.Context, dto RefreshTokenDTO) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.ValidateToken(dto.RefreshToken, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load account", internal.ErrCodeIdentityFailed, err)
	}
	if row == nil {
		return nil, internal.ErrInvalidToken
	}

	return s.issueSession(row.ID, row.Email)
}

// GetUser resolves an access token to the account it was issued for.
func (s *Service) GetUser(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.tokens.ValidateToken(accessToken, TokenKindAccess)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load account", internal.ErrCodeIdentityFailed, err)
	}
	if row == nil {
		// account deleted after the token was issued
		return nil, internal.ErrInvalidToken
	}
	return &User{ID: row.ID, Email: row.Email}, nil
}

// CreateUser registers a new account and returns its id.
func (s *Service) CreateUser(ctx context.Context, email, password string, confirmed bool) (string, error) {
	email = NormalizeEmail(email)

	v := validation.NewValidator()
	v.Field("email", email).Required().Email()
	v.Field("password", password).Required().MinLength(s.minPasswordLength)
	if err := v.Validate(); err != nil {
		return "", err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", internal.NewDependencyError("failed to check existing account", internal.ErrCodeIdentityFailed, err)
	}
	if existing != nil {
		return "", internal.ErrEmailAlreadyRegistered
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}

	row := &accountDatamodel.Account{
		Email:        email,
		PasswordHash: hash,
		Confirmed:    confirmed,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return "", internal.ErrEmailAlreadyRegistered
		}
		s.logger.Error("failed to create account", "email", email, "error", err)
		return "", internal.NewDependencyError("failed to create account", internal.ErrCodeIdentityFailed, err)
	}

	s.logger.Info("account created", "user_id", row.ID)
	return row.ID, nil
}

// UpdateUser applies email and password changes. Passwords shorter than the minimum are ignored.
func (s *Service) UpdateUser(ctx context.Context, id string, upd AccountUpdate) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewDependencyError("failed to load account", internal.ErrCodeIdentityFailed, err)
	}
	if row == nil {
		return internal.ErrAccountNotFound
	}

	changed := false
	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		v := validation.NewValidator()
		v.Field("email", email).Required().Email()
		if verr := v.Validate(); verr != nil {
			return verr
		}
		if email != row.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return internal.NewDependencyError("failed to check existing account", internal.ErrCodeIdentityFailed, err)
			}
			if other != nil && other.ID != row.ID {
				return internal.ErrEmailAlreadyRegistered
			}
			row.Email = email
			changed = true
		}
	}

	if upd.Password != nil && len(*upd.Password) >= s.minPasswordLength {
		hash, err := s.HashPassword(*upd.Password)
		if err != nil {
			return internal.NewInternalError("failed to hash password", err)
		}
		row.PasswordHash = hash
		changed = true
	}

	if !changed {
		return nil
	}

	if err := s.repo.Update(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return internal.ErrEmailAlreadyRegistered
		}
		return internal.NewDependencyError("failed to update account", internal.ErrCodeIdentityFailed, err)
	}
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewDependencyError("failed to delete account", internal.ErrCodeIdentityFailed, err)
	}
	if !deleted {
		return internal.ErrAccountNotFound
	}
	s.logger.Info("account deleted", "user_id", id)
	return nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, internal.NewDependencyError("failed to load account", internal.ErrCodeIdentityFailed, err)
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issueSession(userID, email string) (*Session, error) {
	access, expiresAt, err := s.tokens.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate refresh token", err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt.UTC().Truncate(time.Second),
		User:         User{ID: userID, Email: email},
	}, nil
}
