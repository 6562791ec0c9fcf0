package account

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/email"
	"github.com/cobaemon/portfolio/pkg/session"
)

// Outcome tells the caller where a successful password check leads next.
type Outcome int

const (
	// OutcomeAuthenticated means the session was established immediately.
	OutcomeAuthenticated Outcome = iota
	// OutcomeConfirmCode means a login code was emailed and the user must
	// confirm it.
	OutcomeConfirmCode
	// OutcomeConfirmTOTP means the user has a confirmed authenticator device
	// and must submit a current code.
	OutcomeConfirmTOTP
	// OutcomeEnrollTOTP means one-time passwords are required but no device
	// is registered yet; the user must enroll first.
	OutcomeEnrollTOTP
)

// LoginStorage defines the storage operations needed by the login flow.
type LoginStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetEmailAddress(ctx context.Context, userID uuid.UUID, email string) (*EmailAddress, error)
	GetConfirmedDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error)
	RecordLogin(ctx context.Context, userID uuid.UUID) error
}

// LoginService implements the password check and the second-factor branch
// decision. Authentication failures are uniform: callers learn only that no
// matching authenticated user exists, never which precondition failed.
type LoginService struct {
	cfg      Config
	storage  LoginStorage
	sessions *session.Manager
	mailer   email.EmailSender
	log      *slog.Logger
}

func NewLoginService(cfg Config, storage LoginStorage, sessions *session.Manager, mailer email.EmailSender, log *slog.Logger) *LoginService {
	if log == nil {
		log = slog.Default()
	}
	return &LoginService{cfg: cfg, storage: storage, sessions: sessions, mailer: mailer, log: log}
}

// Authenticate resolves the email to exactly one active user with a matching
// password and a verified email address. Fails closed on any miss.
func (s *LoginService) Authenticate(ctx context.Context, emailAddr, password string) (*User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		// Burn a hash comparison so unknown emails take as long as bad
		// passwords.
		dummyPasswordCheck(password)
		return nil, ErrAuthenticationFailed
	}
	if !user.CheckPassword(password) {
		return nil, ErrAuthenticationFailed
	}
	if !user.IsActive {
		return nil, ErrAuthenticationFailed
	}

	addr, err := s.storage.GetEmailAddress(ctx, user.ID, emailAddr)
	if err != nil || !addr.Verified {
		return nil, ErrAuthenticationFailed
	}

	return user, nil
}

// Begin runs the post-password branch decision for an authenticated-candidate
// user. With no second factor configured it establishes the session directly;
// otherwise it records the pending login and reports which challenge follows.
// The next destination, when present, is captured before branching so the
// second-factor completion can return to it.
func (s *LoginService) Begin(ctx context.Context, w http.ResponseWriter, r *http.Request, user *User, next string) (Outcome, error) {
	sess, err := s.sessions.Ensure(ctx, w, r)
	if err != nil {
		return 0, err
	}

	// The destination only needs to survive in the session when a
	// second-factor round trip follows; direct logins redirect immediately.
	if next != "" && user.RequiresSecondFactor() && isLocalRedirect(next) {
		sess.Set(SessionKeyNext, next)
	}

	switch {
	case user.UseLoginByCode:
		code, err := GenerateLoginCode()
		if err != nil {
			return 0, err
		}
		storePendingCode(sess, NewPendingCode(user.ID, user.Email, code))
		if err := s.sessions.Save(ctx, sess); err != nil {
			return 0, err
		}
		if err := s.sendLoginCode(ctx, user.Email, code); err != nil {
			return 0, err
		}
		return OutcomeConfirmCode, nil

	case user.UseOneTimePassword:
		sess.Set(SessionKeyPendingUserID, user.ID.String())
		p := NewPendingCode(user.ID, user.Email, "")
		storePendingCode(sess, p)
		if err := s.sessions.Save(ctx, sess); err != nil {
			return 0, err
		}
		if _, err := s.storage.GetConfirmedDevice(ctx, user.ID); err != nil {
			return OutcomeEnrollTOTP, nil
		}
		return OutcomeConfirmTOTP, nil

	default:
		if err := s.sessions.Authenticate(ctx, w, r, user.ID); err != nil {
			return 0, err
		}
		// Last-login bookkeeping never blocks an established session.
		if err := s.storage.RecordLogin(ctx, user.ID); err != nil {
			s.log.WarnContext(ctx, "record last login", slog.Any("error", err))
		}
		return OutcomeAuthenticated, nil
	}
}

// RedirectTarget sanitizes a requested destination, falling back to the
// configured default for absolute or empty values.
func (s *LoginService) RedirectTarget(next string) string {
	if isLocalRedirect(next) {
		return next
	}
	return s.cfg.LoginRedirectURL
}

func (s *LoginService) sendLoginCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(
		"<p>Your sign-in code is:</p><h2>%s</h2><p>The code expires in %s. If you did not request it, you can ignore this email.</p>",
		code, s.cfg.LoginCodeTTL,
	)
	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Your sign-in code",
		BodyHTML: body,
		Tag:      "login-code",
	})
}

// isLocalRedirect rejects absolute URLs so a crafted next parameter cannot
// bounce the user off-site after login.
func isLocalRedirect(dest string) bool {
	return strings.HasPrefix(dest, "/") && !strings.HasPrefix(dest, "//")
}

// dummyPasswordCheck keeps the timing of the unknown-email path comparable to
// a real bcrypt comparison.
func dummyPasswordCheck(password string) {
	u := User{PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"}
	_ = u.CheckPassword(password)
}
