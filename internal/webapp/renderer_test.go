package webapp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/account"
	"github.com/cobaemon/portfolio/internal/webapp"
)

func TestRenderer_ParsesAllTemplates(t *testing.T) {
	t.Parallel()

	_, err := webapp.NewRenderer(nil)
	require.NoError(t, err)
}

func TestRenderer_RendersAccountPages(t *testing.T) {
	t.Parallel()

	r, err := webapp.NewRenderer(nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		data any
		want string
	}{
		{name: "login", data: account.LoginPageData{Error: "bad credentials"}, want: "bad credentials"},
		{name: "signup", data: account.SignupPageData{Username: "alice"}, want: "alice"},
		{name: "confirm_code", data: account.ConfirmCodePageData{Email: "a@example.com", AttemptsLeft: 2}, want: "2 attempts remaining"},
		{name: "totp_setup", data: account.TOTPSetupPageData{Secret: "JBSWY3DP", QRImage: "data:image/png;base64,xxx"}, want: "JBSWY3DP"},
		{name: "password_reset", data: account.PasswordPageData{}, want: "Reset your password"},
		{name: "password_reset_key", data: account.PasswordPageData{Token: "tok123"}, want: "tok123"},
		{name: "password_change", data: account.PasswordPageData{}, want: "Change your password"},
		{name: "email", data: account.EmailPageData{}, want: "Email addresses"},
		{name: "two_factor", data: account.TwoFactorPageData{Method: account.TwoFactorTOTP}, want: "Authenticator app"},
		{name: "home", data: webapp.HomePageData{Projects: []webapp.Project{{Name: "demo"}}}, want: "demo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.Render(w, http.StatusOK, tt.name, tt.data)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	t.Parallel()

	r, err := webapp.NewRenderer(nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.Render(w, http.StatusOK, "no-such-page", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
