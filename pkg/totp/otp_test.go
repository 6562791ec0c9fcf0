package totp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/pkg/totp"
)

func TestGenerateSecretKey(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, totp.SecretKeyRegex, secret)

	// Two generated secrets must differ.
	other, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.Params
		want    string
		wantErr error
	}{
		{
			name: "basic URI",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test@example.com",
				Issuer:      "Portfolio",
			},
			want: "otpauth://totp/Portfolio:test@example.com?algorithm=SHA1&digits=6&issuer=Portfolio&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "issuer with spaces",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "user",
				Issuer:      "Cobaemon Portfolio",
			},
			want: "otpauth://totp/Cobaemon%20Portfolio:user?algorithm=SHA1&digits=6&issuer=Cobaemon+Portfolio&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name:    "missing secret",
			params:  totp.Params{AccountName: "user", Issuer: "Portfolio"},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name:    "invalid secret",
			params:  totp.Params{Secret: "not-base32!", AccountName: "user", Issuer: "Portfolio"},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name:    "missing account name",
			params:  totp.Params{Secret: "ABCDEFGHIJKLMNOP", Issuer: "Portfolio"},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name:    "missing issuer",
			params:  totp.Params{Secret: "ABCDEFGHIJKLMNOP", AccountName: "user"},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ProvisioningURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret)
	require.NoError(t, err)

	ok, err := totp.Verify(secret, code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = totp.Verify(secret, "000000")
	require.NoError(t, err)
	if code == "000000" {
		assert.True(t, ok)
	} else {
		assert.False(t, ok)
	}
}

func TestVerify_AdjacentWindows(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	previous, err := totp.GenerateCodeAt(secret, time.Now().Add(-totp.DefaultPeriod*time.Second))
	require.NoError(t, err)
	next, err := totp.GenerateCodeAt(secret, time.Now().Add(totp.DefaultPeriod*time.Second))
	require.NoError(t, err)

	ok, err := totp.Verify(secret, previous)
	require.NoError(t, err)
	assert.True(t, ok, "previous window code must be accepted")

	ok, err = totp.Verify(secret, next)
	require.NoError(t, err)
	assert.True(t, ok, "next window code must be accepted")
}

func TestVerify_RejectsBadInput(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	_, err = totp.Verify("not-base32!", "123456")
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)

	_, err = totp.Verify(secret, "12345")
	assert.ErrorIs(t, err, totp.ErrInvalidCodeFormat)

	_, err = totp.Verify(secret, "abcdef")
	assert.ErrorIs(t, err, totp.ErrInvalidCodeFormat)
}

func TestGenerateCodeAt_Deterministic(t *testing.T) {
	t.Parallel()
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	at := time.Unix(59, 0)

	first, err := totp.GenerateCodeAt(secret, at)
	require.NoError(t, err)
	second, err := totp.GenerateCodeAt(secret, at)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, totp.DefaultDigits)
}
