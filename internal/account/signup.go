package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/email"
)

// SignupStorage defines the storage operations needed by registration and
// email verification.
type SignupStorage interface {
	// CreateUser persists the user, its primary email address record, and its
	// encryption key in one atomic step.
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	MarkEmailVerified(ctx context.Context, userID uuid.UUID, email string) error
	TokenStorage
}

// SignupService registers new users and drives the email verification loop.
// Login refuses unverified addresses, so the verification email is the gate
// to a usable account.
type SignupService struct {
	cfg     Config
	storage SignupStorage
	mailer  email.EmailSender
	log     *slog.Logger
}

func NewSignupService(cfg Config, storage SignupStorage, mailer email.EmailSender, log *slog.Logger) *SignupService {
	if log == nil {
		log = slog.Default()
	}
	return &SignupService{cfg: cfg, storage: storage, mailer: mailer, log: log}
}

// Register creates the user and sends the verification email. The encryption
// key is attached by the repository as part of the same create.
func (s *SignupService) Register(ctx context.Context, username, emailAddr, password string) (*User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !email.IsValidAddress(emailAddr) {
		return nil, ErrMissingEmail
	}

	user, err := NewUser(strings.TrimSpace(username), emailAddr, password)
	if err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user, emailAddr); err != nil {
		// The account exists; verification can be re-requested. Log and move on.
		s.log.ErrorContext(ctx, "failed to send verification email",
			slog.String("user_id", user.ID.String()), slog.Any("error", err))
	}

	return user, nil
}

// ResendVerification issues a fresh verification link for an existing,
// still-unverified address. Unknown emails are silently accepted to avoid
// revealing which addresses have accounts.
func (s *SignupService) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil
	}
	return s.sendVerification(ctx, user, emailAddr)
}

// VerifyEmail redeems a verification token and marks the address verified.
func (s *SignupService) VerifyEmail(ctx context.Context, rawToken string) error {
	token, err := redeemToken(ctx, s.storage, rawToken, TokenPurposeEmailVerify)
	if err != nil {
		return err
	}
	return s.storage.MarkEmailVerified(ctx, token.UserID, token.Payload)
}

func (s *SignupService) sendVerification(ctx context.Context, user *User, emailAddr string) error {
	raw, token, err := mintToken(user.ID, TokenPurposeEmailVerify, emailAddr, s.cfg.VerificationTokenTTL)
	if err != nil {
		return err
	}
	if err := s.storage.CreateToken(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/accounts/confirm-email/%s", s.cfg.BaseURL, raw)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Confirm your email address by following this link:</p><p><a href=%q>%s</a></p><p>The link expires in %s.</p>",
		user.Username, link, link, s.cfg.VerificationTokenTTL,
	)
	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   emailAddr,
		Subject:  "Confirm your email address",
		BodyHTML: body,
		Tag:      "email-verification",
	})
}
