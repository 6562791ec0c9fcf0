package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SignupPageData feeds the registration template.
type SignupPageData struct {
	Username string
	Email    string
	Error    string
	Notice   string
}

func (h *Handler) signupPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "signup", SignupPageData{Notice: h.popFlash(w, r)})
}

func (h *Handler) signupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	emailAddr := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if password != r.PostFormValue("password_confirm") {
		h.views.Render(w, http.StatusOK, "signup", SignupPageData{
			Username: username, Email: emailAddr,
			Error: "Passwords do not match.",
		})
		return
	}
	if err := validatePassword(password); err != nil {
		h.views.Render(w, http.StatusOK, "signup", SignupPageData{
			Username: username, Email: emailAddr,
			Error: "Password must be at least 8 characters.",
		})
		return
	}

	if _, err := h.signup.Register(r.Context(), username, emailAddr, password); err != nil {
		msg := "Could not create the account."
		switch {
		case errors.Is(err, ErrEmailTaken):
			msg = "An account with this email already exists."
		case errors.Is(err, ErrUsernameTaken):
			msg = "This username is taken."
		case errors.Is(err, ErrMissingUsername), errors.Is(err, ErrMissingEmail):
			msg = "All fields are required."
		}
		h.views.Render(w, http.StatusOK, "signup", SignupPageData{
			Username: username, Email: emailAddr, Error: msg,
		})
		return
	}

	h.flash(w, r, "Check your inbox to confirm your email address.")
	http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
}

func (h *Handler) confirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.signup.VerifyEmail(r.Context(), token); err != nil {
		h.flash(w, r, "This confirmation link is invalid or has expired.")
	} else {
		h.flash(w, r, "Email address confirmed. You can sign in now.")
	}
	http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.signup.ResendVerification(r.Context(), r.PostFormValue("email")); err != nil {
		h.log.ErrorContext(r.Context(), "resend verification failed", slog.Any("error", err))
	}
	// Same answer whether or not the address exists.
	h.flash(w, r, "If the address is registered, a new confirmation email is on its way.")
	http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
}

// PasswordPageData feeds the password reset and change templates.
type PasswordPageData struct {
	Email  string
	Token  string
	Error  string
	Notice string
}

func (h *Handler) passwordResetPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "password_reset", PasswordPageData{Notice: h.popFlash(w, r)})
}

func (h *Handler) passwordResetSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.password.RequestReset(r.Context(), r.PostFormValue("email")); err != nil {
		h.log.ErrorContext(r.Context(), "password reset request failed", slog.Any("error", err))
	}
	h.flash(w, r, "If the address is registered, a reset link is on its way.")
	http.Redirect(w, r, "/accounts/password/reset", http.StatusSeeOther)
}

func (h *Handler) passwordResetKeyPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "password_reset_key", PasswordPageData{
		Token: chi.URLParam(r, "token"),
	})
}

func (h *Handler) passwordResetKeySubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	token := chi.URLParam(r, "token")
	password := r.PostFormValue("password")

	if password != r.PostFormValue("password_confirm") {
		h.views.Render(w, http.StatusOK, "password_reset_key", PasswordPageData{
			Token: token, Error: "Passwords do not match.",
		})
		return
	}

	if err := h.password.ResetPassword(r.Context(), token, password); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			h.flash(w, r, "This reset link is invalid or has expired.")
			http.Redirect(w, r, "/accounts/password/reset", http.StatusSeeOther)
			return
		}
		h.views.Render(w, http.StatusOK, "password_reset_key", PasswordPageData{
			Token: token, Error: "Password must be at least 8 characters.",
		})
		return
	}

	h.flash(w, r, "Password updated. Sign in with your new password.")
	http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
}

func (h *Handler) passwordChangePage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "password_change", PasswordPageData{Notice: h.popFlash(w, r)})
}

func (h *Handler) passwordChangeSubmit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), r)
	if err != nil || !sess.IsAuthenticated() {
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	newPassword := r.PostFormValue("new_password")
	if newPassword != r.PostFormValue("new_password_confirm") {
		h.views.Render(w, http.StatusOK, "password_change", PasswordPageData{Error: "Passwords do not match."})
		return
	}

	err = h.password.ChangePassword(r.Context(), *sess.UserID, r.PostFormValue("current_password"), newPassword)
	if err != nil {
		msg := "Password must be at least 8 characters."
		if errors.Is(err, ErrAuthenticationFailed) {
			msg = "Current password is incorrect."
		}
		h.views.Render(w, http.StatusOK, "password_change", PasswordPageData{Error: msg})
		return
	}

	h.flash(w, r, "Password updated.")
	http.Redirect(w, r, "/accounts/password/change", http.StatusSeeOther)
}

// EmailPageData feeds the email management template.
type EmailPageData struct {
	Addresses []*EmailAddress
	Error     string
	Notice    string
}

func (h *Handler) emailPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r.Context(), r)
	addrs, err := h.settings.Emails(r.Context(), *sess.UserID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.views.Render(w, http.StatusOK, "email", EmailPageData{
		Addresses: addrs,
		Notice:    h.popFlash(w, r),
	})
}

func (h *Handler) emailSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r.Context(), r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	userID := *sess.UserID
	emailAddr := r.PostFormValue("email")

	var err error
	switch r.PostFormValue("action") {
	case "add":
		err = h.settings.AddEmail(r.Context(), userID, emailAddr)
	case "remove":
		err = h.settings.RemoveEmail(r.Context(), userID, emailAddr)
	case "primary":
		err = h.settings.MakePrimary(r.Context(), userID, emailAddr)
	default:
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err != nil {
		msg := "Could not update email addresses."
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			msg = "This address is already registered."
		case errors.Is(err, ErrPrimaryEmail):
			msg = "The primary address cannot be removed."
		case errors.Is(err, ErrEmailNotFound):
			msg = "Only verified addresses can be made primary."
		}
		addrs, _ := h.settings.Emails(r.Context(), userID)
		h.views.Render(w, http.StatusOK, "email", EmailPageData{Addresses: addrs, Error: msg})
		return
	}

	h.flash(w, r, "Email addresses updated.")
	http.Redirect(w, r, "/accounts/email", http.StatusSeeOther)
}

// TwoFactorPageData feeds the 2FA settings template.
type TwoFactorPageData struct {
	Method TwoFactorMethod
	Error  string
	Notice string
}

func (h *Handler) twoFactorPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r.Context(), r)
	method, err := h.settings.Method(r.Context(), *sess.UserID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.views.Render(w, http.StatusOK, "two_factor", TwoFactorPageData{
		Method: method,
		Notice: h.popFlash(w, r),
	})
}

func (h *Handler) twoFactorSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r.Context(), r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	method := TwoFactorMethod(r.PostFormValue("method"))
	if err := h.settings.SetTwoFactorMethod(r.Context(), *sess.UserID, method); err != nil {
		h.views.Render(w, http.StatusOK, "two_factor", TwoFactorPageData{
			Method: method,
			Error:  "Select one sign-in method.",
		})
		return
	}

	// Choosing the authenticator method with no device yet leads straight to
	// enrollment.
	if method == TwoFactorTOTP {
		if _, err := h.enroll.storage.GetConfirmedDevice(r.Context(), *sess.UserID); err != nil {
			http.Redirect(w, r, "/accounts/totp-setup", http.StatusSeeOther)
			return
		}
	}

	h.flash(w, r, "Two-factor settings updated.")
	http.Redirect(w, r, "/accounts/two-factor", http.StatusSeeOther)
}

func (h *Handler) oauthBegin(w http.ResponseWriter, r *http.Request) {
	url, err := h.oauth.Begin(r.Context(), w, r, chi.URLParam(r, "provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	user, err := h.oauth.Callback(r.Context(), r,
		chi.URLParam(r, "provider"),
		r.URL.Query().Get("state"),
		r.URL.Query().Get("code"))
	if err != nil {
		h.log.ErrorContext(r.Context(), "oauth callback failed", slog.Any("error", err))
		h.flash(w, r, "Social sign-in failed. Please try again.")
		http.Redirect(w, r, "/accounts/login", http.StatusSeeOther)
		return
	}

	// Social login is a first factor like a password; second factors still
	// apply.
	outcome, err := h.login.Begin(r.Context(), w, r, user, "")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	switch outcome {
	case OutcomeConfirmCode, OutcomeConfirmTOTP:
		http.Redirect(w, r, "/accounts/confirm-login-code", http.StatusSeeOther)
	case OutcomeEnrollTOTP:
		http.Redirect(w, r, "/accounts/totp-setup", http.StatusSeeOther)
	default:
		http.Redirect(w, r, h.login.RedirectTarget(""), http.StatusSeeOther)
	}
}
