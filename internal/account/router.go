package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cobaemon/portfolio/pkg/cookie"
	"github.com/cobaemon/portfolio/pkg/ratelimiter"
	"github.com/cobaemon/portfolio/pkg/session"
)

// Renderer renders a named page template with the given data. The web layer
// provides the implementation.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any)
}

// Handler exposes the account flows over HTTP.
type Handler struct {
	cfg      Config
	login    *LoginService
	confirm  *ConfirmService
	enroll   *EnrollService
	signup   *SignupService
	password *PasswordService
	settings *SettingsService
	oauth    *OAuthService
	sessions *session.Manager
	cookies  *cookie.Manager
	views    Renderer
	log      *slog.Logger
}

type HandlerDeps struct {
	Config   Config
	Login    *LoginService
	Confirm  *ConfirmService
	Enroll   *EnrollService
	Signup   *SignupService
	Password *PasswordService
	Settings *SettingsService
	OAuth    *OAuthService
	Sessions *session.Manager
	Cookies  *cookie.Manager
	Views    Renderer
	Log      *slog.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Handler{
		cfg:      deps.Config,
		login:    deps.Login,
		confirm:  deps.Confirm,
		enroll:   deps.Enroll,
		signup:   deps.Signup,
		password: deps.Password,
		settings: deps.Settings,
		oauth:    deps.OAuth,
		sessions: deps.Sessions,
		cookies:  deps.Cookies,
		views:    deps.Views,
		log:      deps.Log,
	}
}

// Routes mounts the account endpoints. loginLimiter throttles the
// credential-bearing POSTs by client IP and action.
func (h *Handler) Routes(loginLimiter ratelimiter.RateLimiter) http.Handler {
	r := chi.NewRouter()

	throttled := ratelimiter.Middleware(loginLimiter,
		ratelimiter.Composite(ratelimiter.ByClientIP(), ratelimiter.ByAction("account")))

	r.Get("/login", h.loginPage)
	r.With(throttled).Post("/login", h.loginSubmit)
	r.Post("/logout", h.logout)

	r.Get("/signup", h.signupPage)
	r.With(throttled).Post("/signup", h.signupSubmit)
	r.Get("/confirm-email/{token}", h.confirmEmail)
	r.With(throttled).Post("/confirm-email/resend", h.resendVerification)

	r.Get("/confirm-login-code", h.confirmCodePage)
	r.With(throttled).Post("/confirm-login-code", h.confirmCodeSubmit)

	r.Get("/totp-setup", h.totpSetupPage)
	r.Post("/totp-setup", h.totpSetupSubmit)

	r.Get("/password/reset", h.passwordResetPage)
	r.With(throttled).Post("/password/reset", h.passwordResetSubmit)
	r.Get("/password/reset/key/{token}", h.passwordResetKeyPage)
	r.With(throttled).Post("/password/reset/key/{token}", h.passwordResetKeySubmit)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/password/change", h.passwordChangePage)
		r.Post("/password/change", h.passwordChangeSubmit)
		r.Get("/email", h.emailPage)
		r.Post("/email", h.emailSubmit)
		r.Get("/two-factor", h.twoFactorPage)
		r.Post("/two-factor", h.twoFactorSubmit)
	})

	if h.oauth != nil {
		r.Get("/oauth/{provider}/login", h.oauthBegin)
		r.Get("/oauth/{provider}/callback", h.oauthCallback)
	}

	return r
}

// requireAuth redirects anonymous requests to login, capturing the original
// destination so it can be restored after the login completes.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Get(r.Context(), r)
		if err != nil || !sess.IsAuthenticated() {
			_ = h.sessions.Put(r.Context(), w, r, SessionKeyNext, r.URL.Path)
			http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// flash stores a one-shot notice for the next rendered page.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.cookies.SetFlash(w, r, "notice", msg); err != nil {
		h.log.ErrorContext(r.Context(), "failed to set flash", slog.Any("error", err))
	}
}

// popFlash retrieves and clears the pending notice, if any.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) string {
	var msg string
	if err := h.cookies.GetFlash(w, r, "notice", &msg); err != nil {
		return ""
	}
	return msg
}
