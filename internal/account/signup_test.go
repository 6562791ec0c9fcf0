package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/account"
)

func TestRegister_SendsVerificationAndGatesLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user, err := e.signup.Register(ctx, "tina", "Tina@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "tina@example.com", user.Email)
	require.NotNil(t, user.EncryptionKeyID)

	sent := e.mailer.last(t)
	assert.Equal(t, "tina@example.com", sent.SendTo)
	assert.Equal(t, "email-verification", sent.Tag)

	// Unverified: login fails closed.
	_, err = e.login.Authenticate(ctx, "tina@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, account.ErrAuthenticationFailed)

	// Following the emailed link verifies the address and unlocks login.
	require.NoError(t, e.signup.VerifyEmail(ctx, e.mailer.lastToken(t)))
	got, err := e.login.Authenticate(ctx, "tina@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestVerifyEmail_RejectsBadToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	err := e.signup.VerifyEmail(ctx, "bogus-token")
	assert.ErrorIs(t, err, account.ErrInvalidToken)
}

func TestResendVerification_SilentOnUnknownEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.signup.ResendVerification(ctx, "ghost@example.com"))
	assert.Empty(t, e.mailer.sent)
}

func TestRequestReset_SilentOnUnknownEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.password.RequestReset(ctx, "ghost@example.com"))
	assert.Empty(t, e.mailer.sent)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user := e.createVerifiedUser(t, "uma", "uma@example.com", "s3cret-pass")

	err := e.password.ChangePassword(ctx, user.ID, "wrong-current", "brand-new-pass")
	assert.ErrorIs(t, err, account.ErrAuthenticationFailed)

	err = e.password.ChangePassword(ctx, user.ID, "s3cret-pass", "short")
	assert.ErrorIs(t, err, account.ErrMissingPassword)

	require.NoError(t, e.password.ChangePassword(ctx, user.ID, "s3cret-pass", "brand-new-pass"))

	fresh, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fresh.CheckPassword("brand-new-pass"))
	assert.False(t, fresh.CheckPassword("s3cret-pass"))
}

func TestSetTwoFactorMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user := e.createVerifiedUser(t, "vera", "vera@example.com", "s3cret-pass")

	require.NoError(t, e.settings.SetTwoFactorMethod(ctx, user.ID, account.TwoFactorLoginByCode))
	method, err := e.settings.Method(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TwoFactorLoginByCode, method)

	// Switching methods clears the other flag rather than stacking them.
	require.NoError(t, e.settings.SetTwoFactorMethod(ctx, user.ID, account.TwoFactorTOTP))
	fresh, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, fresh.UseLoginByCode)
	assert.True(t, fresh.UseOneTimePassword)

	require.NoError(t, e.settings.SetTwoFactorMethod(ctx, user.ID, account.TwoFactorNone))
	method, err = e.settings.Method(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.TwoFactorNone, method)

	err = e.settings.SetTwoFactorMethod(ctx, user.ID, "both-please")
	assert.ErrorIs(t, err, account.ErrExclusiveFactors)
}

func TestKeyService_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	user := e.createVerifiedUser(t, "wade", "wade@example.com", "s3cret-pass")

	ciphertext, err := e.keys.EncryptForUser(ctx, user.ID, "secret diary entry")
	require.NoError(t, err)
	assert.Len(t, ciphertext, len("secret diary entry")+16)

	got, err := e.keys.DecryptForUser(ctx, user.ID, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "secret diary entry", got)
}
