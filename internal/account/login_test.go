package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/account"
)

func TestAuthenticate_FailsClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user, err := e.signup.Register(ctx, "ivan", "ivan@example.com", "s3cret-pass")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := e.login.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := e.login.Authenticate(ctx, "ivan@example.com", "wrong")
		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("unverified email", func(t *testing.T) {
		_, err := e.login.Authenticate(ctx, "ivan@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("inactive account", func(t *testing.T) {
		require.NoError(t, e.repo.MarkEmailVerified(ctx, user.ID, "ivan@example.com"))
		user.IsActive = false
		require.NoError(t, e.repo.UpdateUser(ctx, user))

		_, err := e.login.Authenticate(ctx, "ivan@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("all preconditions met", func(t *testing.T) {
		user.IsActive = true
		require.NoError(t, e.repo.UpdateUser(ctx, user))

		got, err := e.login.Authenticate(ctx, "IVAN@example.com ", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})
}

func TestBegin_DirectLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user := e.createVerifiedUser(t, "judy", "judy@example.com", "s3cret-pass")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/accounts/login", nil)

	outcome, err := e.login.Begin(ctx, w, r, user, "")
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeAuthenticated, outcome)

	sess, err := e.sessions.Get(ctx, carry(w, "/"))
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated())
	assert.Equal(t, user.ID, *sess.UserID)

	stored, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin, "direct login should stamp last login")
	assert.WithinDuration(t, time.Now(), *stored.LastLogin, time.Minute)
}

func TestBegin_LoginByCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user := e.createVerifiedUser(t, "kate", "kate@example.com", "s3cret-pass")
	user.UseLoginByCode = true
	require.NoError(t, e.repo.UpdateUser(ctx, user))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/accounts/login", nil)

	outcome, err := e.login.Begin(ctx, w, r, user, "")
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeConfirmCode, outcome)

	// A code was emailed but the session is still anonymous.
	code := e.mailer.lastCode(t)
	assert.Len(t, code, 6)
	assert.Equal(t, "kate@example.com", e.mailer.last(t).SendTo)

	sess, err := e.sessions.Get(ctx, carry(w, "/"))
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated())

	stored, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLogin, "pending login must not stamp last login")
}

func TestBegin_OneTimePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user := e.createVerifiedUser(t, "liam", "liam@example.com", "s3cret-pass")
	user.UseOneTimePassword = true
	require.NoError(t, e.repo.UpdateUser(ctx, user))

	t.Run("no device routes to enrollment", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/accounts/login", nil)

		outcome, err := e.login.Begin(ctx, w, r, user, "")
		require.NoError(t, err)
		assert.Equal(t, account.OutcomeEnrollTOTP, outcome)
	})

	t.Run("confirmed device routes to confirmation", func(t *testing.T) {
		enrollConfirmedDevice(t, e, user.ID)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/accounts/login", nil)

		outcome, err := e.login.Begin(ctx, w, r, user, "")
		require.NoError(t, err)
		assert.Equal(t, account.OutcomeConfirmTOTP, outcome)
	})
}

func TestRedirectTarget(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	tests := []struct {
		name string
		next string
		want string
	}{
		{name: "local path", next: "/settings", want: "/settings"},
		{name: "empty falls back", next: "", want: "/"},
		{name: "absolute url rejected", next: "https://evil.example.com/", want: "/"},
		{name: "protocol-relative rejected", next: "//evil.example.com/", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.login.RedirectTarget(tt.next))
		})
	}
}
