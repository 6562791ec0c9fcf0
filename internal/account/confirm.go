package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/secrets"
	"github.com/cobaemon/portfolio/pkg/session"
	"github.com/cobaemon/portfolio/pkg/totp"
)

// ConfirmResult is the state the confirmation step landed in after a
// submission.
type ConfirmResult int

const (
	// ConfirmOK means the second factor verified and the session is now
	// authenticated.
	ConfirmOK ConfirmResult = iota
	// ConfirmRetry means the code was wrong but attempts remain; the form is
	// redisplayed with AttemptsLeft.
	ConfirmRetry
	// ConfirmLockedOut means the attempt limit was exhausted. The pending
	// state is discarded and the user must restart from login.
	ConfirmLockedOut
	// ConfirmNoPending means no pending login exists in the session; the
	// step is unreachable except as a continuation of login.
	ConfirmNoPending
)

// ConfirmStorage defines the storage operations needed by code confirmation.
type ConfirmStorage interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetConfirmedDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error)
	RecordLogin(ctx context.Context, userID uuid.UUID) error
}

// ConfirmService verifies the second factor of a pending login: the emailed
// code for the login-by-code path, or a device token for the one-time-password
// path. Attempts are bounded; exhausting them discards the pending state.
type ConfirmService struct {
	cfg       Config
	storage   ConfirmStorage
	sessions  *session.Manager
	secretKey []byte
	log       *slog.Logger
}

func NewConfirmService(cfg Config, storage ConfirmStorage, sessions *session.Manager, secretKey []byte, log *slog.Logger) *ConfirmService {
	if log == nil {
		log = slog.Default()
	}
	return &ConfirmService{cfg: cfg, storage: storage, sessions: sessions, secretKey: secretKey, log: log}
}

// Pending reports whether the session carries an in-flight login, and the
// email the challenge was issued for (empty on the device path).
func (s *ConfirmService) Pending(ctx context.Context, r *http.Request) (string, bool) {
	sess, err := s.sessions.Get(ctx, r)
	if err != nil {
		return "", false
	}
	if p, ok := loadPendingCode(sess); ok {
		return p.Email, true
	}
	if _, ok := sess.GetString(SessionKeyPendingUserID); ok {
		return "", true
	}
	return "", false
}

// Submit runs one transition of the confirmation state machine. AttemptsLeft
// is meaningful only for ConfirmRetry; dest only for ConfirmOK, where it is
// the captured post-login destination, read-then-deleted from the session so
// it is honored at most once.
func (s *ConfirmService) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request, code string) (result ConfirmResult, attemptsLeft int, dest string, err error) {
	sess, err := s.sessions.Get(ctx, r)
	if err != nil {
		return ConfirmNoPending, 0, "", nil
	}

	p, ok := loadPendingCode(sess)
	if !ok {
		return ConfirmNoPending, 0, "", nil
	}

	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		clearPendingLogin(sess)
		_ = s.sessions.Save(ctx, sess)
		return ConfirmNoPending, 0, "", nil
	}

	matched, err := s.verify(ctx, userID, p, code)
	if err != nil {
		return 0, 0, "", err
	}

	if !matched {
		left := recordFailure(sess, p, s.cfg.MaxCodeAttempts)
		if left <= 0 {
			clearPendingLogin(sess)
			if err := s.sessions.Save(ctx, sess); err != nil {
				return 0, 0, "", err
			}
			s.log.InfoContext(ctx, "pending login locked out", slog.String("user_id", p.UserID))
			return ConfirmLockedOut, 0, "", nil
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return 0, 0, "", err
		}
		return ConfirmRetry, left, "", nil
	}

	dest = s.cfg.LoginRedirectURL
	if v, ok := sess.GetString(SessionKeyNext); ok {
		sess.Delete(SessionKeyNext)
		dest = v
	}

	clearPendingLogin(sess)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return 0, 0, "", err
	}
	if err := s.sessions.Authenticate(ctx, w, r, userID); err != nil {
		return 0, 0, "", err
	}
	// Last-login bookkeeping never blocks an established session.
	if err := s.storage.RecordLogin(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "record last login", slog.Any("error", err))
	}

	s.log.InfoContext(ctx, "second factor confirmed", slog.String("user_id", p.UserID))
	return ConfirmOK, 0, dest, nil
}

// verify dispatches on the pending-login kind. An empty stored code is the
// sentinel for the device path: the submission is checked against the user's
// confirmed authenticator instead of compared as a string.
func (s *ConfirmService) verify(ctx context.Context, userID uuid.UUID, p PendingCode, submitted string) (bool, error) {
	if p.Code == "" {
		device, err := s.storage.GetConfirmedDevice(ctx, userID)
		if err != nil {
			return false, nil
		}
		secret, err := secrets.DecryptString(s.secretKey, device.EncryptedSecret)
		if err != nil {
			return false, err
		}
		ok, err := totp.Verify(secret, submitted)
		if err != nil {
			// Malformed submissions count as mismatches, not failures.
			return false, nil
		}
		return ok, nil
	}

	if p.Expired(s.cfg.LoginCodeTTL) {
		return false, nil
	}
	// Exact, case-sensitive comparison.
	return submitted == p.Code, nil
}
