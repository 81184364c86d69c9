package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	c, err := Load([]string{"--jwt-key", "k"}, envMap(nil))
	require.NoError(t, err)
	require.Equal(t, ":8443", c.GRPCAddr)
	require.Equal(t, StorePostgres, c.Store)
	require.Equal(t, 15*time.Minute, c.AccessTTL)
	require.Equal(t, 5, c.Lockout().MaxAttempts)
	require.Equal(t, 30*time.Minute, c.Lockout().Duration)
	require.False(t, c.TLS())
	require.False(t, c.OpenReg)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Parallel()

	env := envMap(map[string]string{
		"SHOPFLOOR_JWT_KEY":           "from-env",
		"SHOPFLOOR_STORE":             "memory",
		"SHOPFLOOR_LOCKOUT":           "10m",
		"SHOPFLOOR_MAX_ATTEMPTS":      "3",
		"SHOPFLOOR_OPEN_REGISTRATION": "true",
	})
	c, err := Load(nil, env)
	require.NoError(t, err)
	require.Equal(t, "from-env", c.JWTKey)
	require.Equal(t, StoreMemory, c.Store)
	require.Equal(t, 10*time.Minute, c.LockoutFor)
	require.Equal(t, 3, c.MaxAttempts)
	require.True(t, c.OpenReg)

	c, err = Load([]string{"--max-attempts", "7", "--store", "postgres"}, env)
	require.NoError(t, err)
	require.Equal(t, 7, c.MaxAttempts)
	require.Equal(t, StorePostgres, c.Store)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(nil, envMap(nil))
	require.ErrorContains(t, err, "jwt")

	_, err = Load([]string{"--jwt-key", "k", "--store", "sqlite"}, envMap(nil))
	require.ErrorContains(t, err, "unknown store")

	_, err = Load([]string{"--jwt-key", "k", "--tls-cert", "c.pem"}, envMap(nil))
	require.Error(t, err)

	_, err = Load([]string{"--jwt-key", "k"}, envMap(map[string]string{"SHOPFLOOR_LOCKOUT": "forever"}))
	require.ErrorContains(t, err, "SHOPFLOOR_LOCKOUT")

	_, err = Load([]string{"--jwt-key", "k", "--max-attempts", "0"}, envMap(nil))
	require.Error(t, err)
}
