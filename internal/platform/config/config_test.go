package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("FAST_PATH_POLICY", "")
	t.Setenv("DIRECTORY_BACKEND", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, FastPathAutoApprove, cfg.Policy.FastPath)
	assert.True(t, cfg.Policy.ConflictDirectoryCorrection)
	assert.Equal(t, DirectoryMemory, cfg.Directory.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Invitation.SelectionTTL)
	assert.Equal(t, 10, cfg.RateLimit.CodeRedeemRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FAST_PATH_POLICY", "skip_owner")
	t.Setenv("CONFLICT_DIRECTORY_CORRECTION", "false")
	t.Setenv("INVITE_LINK_TTL", "48h")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("RATELIMIT_TOKEN_LOOKUP", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, FastPathSkipOwner, cfg.Policy.FastPath)
	assert.False(t, cfg.Policy.ConflictDirectoryCorrection)
	assert.Equal(t, 48*time.Hour, cfg.Invitation.InviteLinkTTL)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Zero(t, cfg.RateLimit.TokenLookupRequests, "zero disables the class")
}

func TestValidate(t *testing.T) {
	t.Run("unknown fast path policy", func(t *testing.T) {
		t.Setenv("FAST_PATH_POLICY", "sometimes")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "FAST_PATH_POLICY")
	})

	t.Run("postgres directory needs a database", func(t *testing.T) {
		t.Setenv("DIRECTORY_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("http directory needs a url", func(t *testing.T) {
		t.Setenv("DIRECTORY_BACKEND", "http")
		t.Setenv("DIRECTORY_URL", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DIRECTORY_URL")
	})

	t.Run("production needs a signing key", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SIGNING_KEY", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "JWT_SIGNING_KEY")
	})
}
