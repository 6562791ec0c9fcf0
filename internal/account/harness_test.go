package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/account"
	"github.com/cobaemon/portfolio/pkg/cookie"
	"github.com/cobaemon/portfolio/pkg/email"
	"github.com/cobaemon/portfolio/pkg/session"
	"github.com/cobaemon/portfolio/pkg/totp"
)

const testMasterSecret = "0123456789abcdef0123456789abcdef-extra"

// recordingMailer captures outgoing email so tests can pull codes and links
// out of the bodies.
type recordingMailer struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (m *recordingMailer) SendEmail(_ context.Context, params email.SendEmailParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, params)
	return nil
}

func (m *recordingMailer) last(t *testing.T) email.SendEmailParams {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected at least one email")
	return m.sent[len(m.sent)-1]
}

var (
	codePattern  = regexp.MustCompile(`<h2>([a-z2-9]+)</h2>`)
	tokenPattern = regexp.MustCompile(`/accounts/(?:confirm-email|password/reset/key)/([A-Za-z0-9_-]+)`)
)

func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	match := codePattern.FindStringSubmatch(m.last(t).BodyHTML)
	require.Len(t, match, 2, "email body should carry a code")
	return match[1]
}

func (m *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	match := tokenPattern.FindStringSubmatch(m.last(t).BodyHTML)
	require.Len(t, match, 2, "email body should carry a link token")
	return match[1]
}

// env bundles the services under test around a shared in-memory repository
// and session manager.
type env struct {
	cfg      account.Config
	repo     *account.MemoryRepository
	sessions *session.Manager
	mailer   *recordingMailer
	login    *account.LoginService
	confirm  *account.ConfirmService
	enroll   *account.EnrollService
	signup   *account.SignupService
	password *account.PasswordService
	settings *account.SettingsService
	keys     *account.KeyService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := account.Config{
		MasterSecret:         testMasterSecret,
		TOTPIssuer:           "Cobaemon Portfolio",
		LoginCodeTTL:         3 * time.Minute,
		MaxCodeAttempts:      3,
		LoginRedirectURL:     "/",
		VerificationTokenTTL: 24 * time.Hour,
		BaseURL:              "http://localhost:8080",
	}
	require.NoError(t, cfg.Validate())

	cookieMgr, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	store := session.NewMemoryStore(0)
	t.Cleanup(store.Close)
	sessions := session.New(
		session.WithStore(store),
		session.WithTransport(session.NewCookieTransport(cookieMgr, "sid", false)),
	)

	repo := account.NewMemoryRepository([]byte(testMasterSecret))
	mailer := &recordingMailer{}
	secretKey := []byte(testMasterSecret)[:32]

	signup := account.NewSignupService(cfg, repo, mailer, nil)

	return &env{
		cfg:      cfg,
		repo:     repo,
		sessions: sessions,
		mailer:   mailer,
		login:    account.NewLoginService(cfg, repo, sessions, mailer, nil),
		confirm:  account.NewConfirmService(cfg, repo, sessions, secretKey, nil),
		enroll:   account.NewEnrollService(cfg, repo, sessions, secretKey),
		signup:   signup,
		password: account.NewPasswordService(cfg, repo, mailer, nil),
		settings: account.NewSettingsService(cfg, repo, signup),
		keys:     account.NewKeyService(cfg, repo),
	}
}

// createVerifiedUser registers a user and marks its email verified, the state
// required for login.
func (e *env) createVerifiedUser(t *testing.T, username, emailAddr, password string) *account.User {
	t.Helper()
	ctx := context.Background()

	user, err := e.signup.Register(ctx, username, emailAddr, password)
	require.NoError(t, err)
	require.NoError(t, e.repo.MarkEmailVerified(ctx, user.ID, emailAddr))
	return user
}

// enrollConfirmedDevice provisions and confirms an authenticator device for
// the user, returning the raw secret for generating codes in tests.
func enrollConfirmedDevice(t *testing.T, e *env, userID uuid.UUID) string {
	t.Helper()
	ctx := context.Background()

	enrollment, err := e.enroll.Begin(ctx, userID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret)
	require.NoError(t, err)
	require.NoError(t, e.enroll.Complete(ctx, userID, code))
	return enrollment.Secret
}

// carry moves cookies set on w into a new request, simulating the browser.
func carry(w *httptest.ResponseRecorder, target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	// Like a browser jar, the last Set-Cookie for a name wins.
	jar := map[string]*http.Cookie{}
	var names []string
	for _, c := range w.Result().Cookies() {
		if _, seen := jar[c.Name]; !seen {
			names = append(names, c.Name)
		}
		jar[c.Name] = c
	}
	for _, name := range names {
		if c := jar[name]; c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}
