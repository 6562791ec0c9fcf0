package account

import (
	"errors"
	"log/slog"
	"net/http"
)

// LoginPageData feeds the login template.
type LoginPageData struct {
	Email  string
	Error  string
	Notice string
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "login", LoginPageData{Notice: h.popFlash(w, r)})
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	emailAddr := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.login.Authenticate(r.Context(), emailAddr, password)
	if err != nil {
		// One message for every failure mode.
		h.views.Render(w, http.StatusOK, "login", LoginPageData{
			Email: emailAddr,
			Error: "The email address or password you provided is incorrect.",
		})
		return
	}

	next := r.URL.Query().Get("next")
	outcome, err := h.login.Begin(r.Context(), w, r, user, next)
	if err != nil {
		h.log.ErrorContext(r.Context(), "login begin failed", slog.Any("error", err))
		h.views.Render(w, http.StatusInternalServerError, "login", LoginPageData{
			Email: emailAddr,
			Error: "Something went wrong. Please try again.",
		})
		return
	}

	switch outcome {
	case OutcomeConfirmCode, OutcomeConfirmTOTP:
		http.Redirect(w, r, "/accounts/confirm-login-code", http.StatusSeeOther)
	case OutcomeEnrollTOTP:
		http.Redirect(w, r, "/accounts/totp-setup", http.StatusSeeOther)
	default:
		http.Redirect(w, r, h.login.RedirectTarget(next), http.StatusSeeOther)
	}
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.log.ErrorContext(r.Context(), "logout failed", slog.Any("error", err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ConfirmCodePageData feeds the code-confirmation template.
type ConfirmCodePageData struct {
	Email        string
	Error        string
	AttemptsLeft int
}

func (h *Handler) confirmCodePage(w http.ResponseWriter, r *http.Request) {
	email, ok := h.confirm.Pending(r.Context(), r)
	if !ok {
		// Reachable only as a continuation of login.
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
		return
	}
	h.views.Render(w, http.StatusOK, "confirm_code", ConfirmCodePageData{Email: email})
}

func (h *Handler) confirmCodeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	code := r.PostFormValue("code")

	result, attemptsLeft, dest, err := h.confirm.Submit(r.Context(), w, r, code)
	if err != nil {
		h.log.ErrorContext(r.Context(), "code confirmation failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	switch result {
	case ConfirmOK:
		http.Redirect(w, r, dest, http.StatusSeeOther)
	case ConfirmRetry:
		email, _ := h.confirm.Pending(r.Context(), r)
		h.views.Render(w, http.StatusOK, "confirm_code", ConfirmCodePageData{
			Email:        email,
			Error:        "Incorrect code.",
			AttemptsLeft: attemptsLeft,
		})
	case ConfirmLockedOut:
		h.flash(w, r, "Too many failed attempts. Please sign in again.")
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
	default: // ConfirmNoPending
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
	}
}

// TOTPSetupPageData feeds the enrollment template.
type TOTPSetupPageData struct {
	Secret  string
	QRImage string
	Error   string
}

func (h *Handler) totpSetupPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.enroll.TargetUser(r.Context(), r)
	if !ok {
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
		return
	}

	enrollment, err := h.enroll.Begin(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "totp enrollment failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.views.Render(w, http.StatusOK, "totp_setup", TOTPSetupPageData{
		Secret:  enrollment.Secret,
		QRImage: enrollment.QRImage,
	})
}

// totpSetupSubmit confirms the device and continues to code confirmation.
// Enrollment never authenticates by itself.
func (h *Handler) totpSetupSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.enroll.TargetUser(r.Context(), r)
	if !ok {
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.enroll.Complete(r.Context(), userID, r.PostFormValue("code")); err != nil {
		if errors.Is(err, ErrCodeMismatch) || errors.Is(err, ErrDeviceNotFound) {
			enrollment, beginErr := h.enroll.Begin(r.Context(), userID)
			if beginErr != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			h.views.Render(w, http.StatusOK, "totp_setup", TOTPSetupPageData{
				Secret:  enrollment.Secret,
				QRImage: enrollment.QRImage,
				Error:   "Incorrect code. Scan the QR code and try again.",
			})
			return
		}
		h.log.ErrorContext(r.Context(), "totp confirmation failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	sess, err := h.sessions.Get(r.Context(), r)
	if err == nil && sess.IsAuthenticated() {
		// Settings-driven enrollment returns to the settings page.
		h.flash(w, r, "Authenticator app registered.")
		http.Redirect(w, r, "/accounts/two-factor", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/accounts/confirm-login-code", http.StatusSeeOther)
}
