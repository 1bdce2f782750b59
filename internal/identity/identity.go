package identity

import (
	"strings"
	"time"

	accountDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/account"
	"github.com/golang-jwt/jwt/v5"
)

// Account is a login-capable identity. Profiles reference it by ID.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Confirmed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is what a verified access token resolves to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// AccountUpdate carries optional changes; nil fields are left untouched.
type AccountUpdate struct {
	Email    *string
	Password *string
}

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Confirmed:    a.Confirmed,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModel(a *accountDatamodel.Account) *Account {
	return &Account{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Confirmed:    a.Confirmed,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
