package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/email"
)

const minPasswordLength = 8

// PasswordStorage defines the storage operations needed by password
// management.
type PasswordStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	TokenStorage
}

// PasswordService handles the reset-by-email flow and authenticated password
// changes.
type PasswordService struct {
	cfg     Config
	storage PasswordStorage
	mailer  email.EmailSender
	log     *slog.Logger
}

func NewPasswordService(cfg Config, storage PasswordStorage, mailer email.EmailSender, log *slog.Logger) *PasswordService {
	if log == nil {
		log = slog.Default()
	}
	return &PasswordService{cfg: cfg, storage: storage, mailer: mailer, log: log}
}

// RequestReset emails a single-use reset link. Unknown addresses are silently
// accepted so the endpoint cannot be used to probe for accounts.
func (s *PasswordService) RequestReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil
	}

	raw, token, err := mintToken(user.ID, TokenPurposePasswordReset, "", s.cfg.VerificationTokenTTL)
	if err != nil {
		return err
	}
	if err := s.storage.CreateToken(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/accounts/password/reset/key/%s", s.cfg.BaseURL, raw)
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p><p><a href=%q>Choose a new password</a></p><p>If you did not request this, you can ignore this email.</p>",
		link,
	)
	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   emailAddr,
		Subject:  "Reset your password",
		BodyHTML: body,
		Tag:      "password-reset",
	})
}

// ResetPassword redeems a reset token and sets the new password.
func (s *PasswordService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	token, err := redeemToken(ctx, s.storage, rawToken, TokenPurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.storage.GetUserByID(ctx, token.UserID)
	if err != nil {
		return ErrInvalidToken
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password reset", slog.String("user_id", user.ID.String()))
	return s.storage.UpdatePassword(ctx, user.ID, user.PasswordHash)
}

// ChangePassword updates the password for an authenticated user after
// re-checking the current one.
func (s *PasswordService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return ErrAuthenticationFailed
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	return s.storage.UpdatePassword(ctx, user.ID, user.PasswordHash)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrMissingPassword, minPasswordLength)
	}
	return nil
}
