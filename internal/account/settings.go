package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/email"
)

// TwoFactorMethod selects which second factor a user signs in with.
type TwoFactorMethod string

const (
	TwoFactorNone        TwoFactorMethod = "none"
	TwoFactorLoginByCode TwoFactorMethod = "login_by_code"
	TwoFactorTOTP        TwoFactorMethod = "totp"
)

// SettingsStorage defines the storage operations needed by account settings.
type SettingsStorage interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	ListEmailAddresses(ctx context.Context, userID uuid.UUID) ([]*EmailAddress, error)
	AddEmailAddress(ctx context.Context, addr *EmailAddress) error
	DeleteEmailAddress(ctx context.Context, userID uuid.UUID, email string) error
	SetPrimaryEmail(ctx context.Context, userID uuid.UUID, email string) error
	TokenStorage
}

// SettingsService covers the authenticated account pages: the two-factor
// method selector and email address management.
type SettingsService struct {
	cfg     Config
	storage SettingsStorage
	signup  *SignupService
}

func NewSettingsService(cfg Config, storage SettingsStorage, signup *SignupService) *SettingsService {
	return &SettingsService{cfg: cfg, storage: storage, signup: signup}
}

// SetTwoFactorMethod switches the user's second factor. The two flags are
// mutually exclusive, so selecting one always clears the other.
func (s *SettingsService) SetTwoFactorMethod(ctx context.Context, userID uuid.UUID, method TwoFactorMethod) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	switch method {
	case TwoFactorNone:
		user.UseLoginByCode = false
		user.UseOneTimePassword = false
	case TwoFactorLoginByCode:
		user.UseLoginByCode = true
		user.UseOneTimePassword = false
	case TwoFactorTOTP:
		user.UseLoginByCode = false
		user.UseOneTimePassword = true
	default:
		return ErrExclusiveFactors
	}

	if err := user.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateUser(ctx, user)
}

// Method reports the user's current second-factor selection.
func (s *SettingsService) Method(ctx context.Context, userID uuid.UUID) (TwoFactorMethod, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return TwoFactorNone, err
	}
	switch {
	case user.UseLoginByCode:
		return TwoFactorLoginByCode, nil
	case user.UseOneTimePassword:
		return TwoFactorTOTP, nil
	default:
		return TwoFactorNone, nil
	}
}

// Emails lists the user's addresses for the management page.
func (s *SettingsService) Emails(ctx context.Context, userID uuid.UUID) ([]*EmailAddress, error) {
	return s.storage.ListEmailAddresses(ctx, userID)
}

// AddEmail attaches a new unverified address and sends the verification link.
func (s *SettingsService) AddEmail(ctx context.Context, userID uuid.UUID, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !email.IsValidAddress(emailAddr) {
		return ErrMissingEmail
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	addr := &EmailAddress{
		ID:     uuid.New(),
		UserID: userID,
		Email:  emailAddr,
	}
	if err := s.storage.AddEmailAddress(ctx, addr); err != nil {
		return err
	}
	return s.signup.sendVerification(ctx, user, emailAddr)
}

// RemoveEmail deletes a non-primary address.
func (s *SettingsService) RemoveEmail(ctx context.Context, userID uuid.UUID, emailAddr string) error {
	return s.storage.DeleteEmailAddress(ctx, userID, strings.ToLower(strings.TrimSpace(emailAddr)))
}

// MakePrimary promotes a verified address to primary.
func (s *SettingsService) MakePrimary(ctx context.Context, userID uuid.UUID, emailAddr string) error {
	return s.storage.SetPrimaryEmail(ctx, userID, strings.ToLower(strings.TrimSpace(emailAddr)))
}
