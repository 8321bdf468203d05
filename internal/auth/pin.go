package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or PIN")
	ErrWeakPin            = errors.New("PIN must be 4 to 6 digits")
	ErrEmailExists        = errors.New("email already registered")
)

const (
	minPinLength = 4
	maxPinLength = 6
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PinAuthenticator implements PIN-based authentication using bcrypt.
type PinAuthenticator struct {
	storage UserStorage
}

// NewPinAuthenticator creates a new PIN-based authenticator.
func NewPinAuthenticator(storage UserStorage) *PinAuthenticator {
	return &PinAuthenticator{
		storage: storage,
	}
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredential checks that the PIN is 4 to 6 ASCII digits.
func (a *PinAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPinLength || len(credential) > maxPinLength {
		return ErrWeakPin
	}
	for _, r := range credential {
		if r < '0' || r > '9' {
			return ErrWeakPin
		}
	}
	return nil
}

// Register creates a new user account with a hashed PIN.
func (a *PinAuthenticator) Register(ctx context.Context, email, displayName, credential string, currency models.Currency) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)

	_, err := a.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := models.NewUser(email, strings.TrimSpace(displayName), string(hashed))
	if currency.Valid() {
		user.DefaultCurrency = currency
	}

	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and PIN, returning the user if valid.
func (a *PinAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
