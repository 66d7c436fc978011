package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Generate(userID uuid.UUID) (string, error)
	ValidateAccessToken(token string) (uuid.UUID, error)
}

type Credentials struct {
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

// AccountUseCase is the local identity provider: registration, login and
// token checks.
type AccountUseCase struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *Validator
	now      func() time.Time
}

func NewAccountUseCase(users UserStore, hasher PasswordHasher, tokens TokenIssuer, validate *Validator) *AccountUseCase {
	return &AccountUseCase{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
		now:      time.Now,
	}
}

func (uc *AccountUseCase) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	creds := Credentials{Email: normalizeEmail(email), Password: password}
	if err := uc.validate.Struct(creds); err != nil {
		return uuid.Nil, err
	}

	hash, err := uc.hasher.Hash(creds.Password)
	if err != nil {
		return uuid.Nil, err
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// Login returns an access token. Unknown emails and wrong passwords are not
// told apart.
func (uc *AccountUseCase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return uc.tokens.Generate(user.ID)
}

func (uc *AccountUseCase) ValidateAccess(token string) (uuid.UUID, error) {
	return uc.tokens.ValidateAccessToken(token)
}

func (uc *AccountUseCase) IsProfileComplete(ctx context.Context, userID uuid.UUID) (bool, error) {
	return uc.users.IsProfileComplete(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
