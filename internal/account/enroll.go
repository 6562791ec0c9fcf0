package account

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/cobaemon/portfolio/pkg/qrcode"
	"github.com/cobaemon/portfolio/pkg/secrets"
	"github.com/cobaemon/portfolio/pkg/session"
	"github.com/cobaemon/portfolio/pkg/totp"
)

// EnrollStorage defines the storage operations needed by device enrollment.
type EnrollStorage interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error)
	GetConfirmedDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error)
	CreateDevice(ctx context.Context, device *TOTPDevice) error
	ConfirmDevice(ctx context.Context, deviceID uuid.UUID) error
}

// Enrollment carries everything the setup page needs: the raw secret for
// manual entry, the otpauth URI, and the QR code as a data URI.
type Enrollment struct {
	Secret  string
	URI     string
	QRImage string
}

// EnrollService provisions authenticator devices. Get-or-create is
// idempotent: reloading the setup page reuses the unconfirmed device rather
// than issuing a new secret. Completing enrollment never authenticates; an
// in-flight login continues through code confirmation.
type EnrollService struct {
	cfg       Config
	storage   EnrollStorage
	sessions  *session.Manager
	secretKey []byte
}

func NewEnrollService(cfg Config, storage EnrollStorage, sessions *session.Manager, secretKey []byte) *EnrollService {
	return &EnrollService{cfg: cfg, storage: storage, sessions: sessions, secretKey: secretKey}
}

// TargetUser resolves who is enrolling: the live session's user for a
// settings change, or the pending login's candidate for an in-flight login.
func (s *EnrollService) TargetUser(ctx context.Context, r *http.Request) (uuid.UUID, bool) {
	sess, err := s.sessions.Get(ctx, r)
	if err != nil {
		return uuid.Nil, false
	}
	if sess.IsAuthenticated() {
		return *sess.UserID, true
	}
	if raw, ok := sess.GetString(SessionKeyPendingUserID); ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Begin fetches or creates the user's device and renders the provisioning
// artifacts.
func (s *EnrollService) Begin(ctx context.Context, userID uuid.UUID) (*Enrollment, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	device, err := s.getOrCreateDevice(ctx, user)
	if err != nil {
		return nil, err
	}

	secret, err := secrets.DecryptString(s.secretKey, device.EncryptedSecret)
	if err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(totp.Params{
		Secret:      secret,
		AccountName: user.Email,
		Issuer:      s.cfg.TOTPIssuer,
	})
	if err != nil {
		return nil, err
	}

	img, err := qrcode.GenerateBase64Image(uri, 0)
	if err != nil {
		return nil, err
	}

	return &Enrollment{Secret: secret, URI: uri, QRImage: img}, nil
}

// Complete verifies the first code from the freshly provisioned device and
// marks it confirmed. The caller redirects into code confirmation (for an
// in-flight login) or back to settings; the session is never authenticated
// here.
func (s *EnrollService) Complete(ctx context.Context, userID uuid.UUID, code string) error {
	device, err := s.storage.GetDevice(ctx, userID)
	if err != nil {
		return ErrDeviceNotFound
	}

	secret, err := secrets.DecryptString(s.secretKey, device.EncryptedSecret)
	if err != nil {
		return err
	}

	ok, err := totp.Verify(secret, code)
	if err != nil || !ok {
		return ErrCodeMismatch
	}

	return s.storage.ConfirmDevice(ctx, device.ID)
}

func (s *EnrollService) getOrCreateDevice(ctx context.Context, user *User) (*TOTPDevice, error) {
	if device, err := s.storage.GetDevice(ctx, user.ID); err == nil {
		return device, nil
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}
	encrypted, err := secrets.EncryptString(s.secretKey, secret)
	if err != nil {
		return nil, err
	}

	device := &TOTPDevice{
		ID:              uuid.New(),
		UserID:          user.ID,
		Name:            "default",
		EncryptedSecret: encrypted,
	}
	if err := s.storage.CreateDevice(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}
