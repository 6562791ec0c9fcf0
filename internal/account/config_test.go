package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/account"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := account.Config{MasterSecret: testMasterSecret, MaxCodeAttempts: 3}
	require.NoError(t, valid.Validate())

	short := valid
	short.MasterSecret = "too-short"
	assert.ErrorIs(t, short.Validate(), account.ErrMasterSecretTooShort)

	noAttempts := valid
	noAttempts.MaxCodeAttempts = 0
	assert.ErrorIs(t, noAttempts.Validate(), account.ErrInvalidAttemptLimit)
}

func TestConfigMasterKey(t *testing.T) {
	t.Parallel()

	cfg := account.Config{MasterSecret: testMasterSecret, MaxCodeAttempts: 3}
	require.NoError(t, cfg.Validate())

	key := cfg.MasterKey()
	assert.Len(t, key, 32)
	assert.Equal(t, []byte(testMasterSecret)[:32], key)
}
