package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nDB_DRIVER=postgres\nUPLOAD_MAX_BYTES=\"1024\"\nbroken\n"), 0o644))

	out := map[string]string{}
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "postgres", out["DB_DRIVER"])
	assert.Equal(t, "1024", out["UPLOAD_MAX_BYTES"])
	assert.NotContains(t, out, "BROKEN")
}

func TestMergeJSONConfigAcceptsScalars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_port":"9000","db_connect_attempts":3,"debug":true,"nested":{"a":1}}`), 0o644))

	out := map[string]string{}
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "9000", out["APP_PORT"])
	assert.Equal(t, "3", out["DB_CONNECT_ATTEMPTS"])
	assert.Equal(t, "true", out["DEBUG"])
	assert.NotContains(t, out, "NESTED")
}

func TestTypedAccessorsFallBack(t *testing.T) {
	Set("DB_CONNECT_ATTEMPTS", "nope")
	Set("DB_CONNECT_INTERVAL", "250ms")
	Set("UPLOAD_MAX_BYTES", "")
	t.Cleanup(func() {
		Set("DB_CONNECT_ATTEMPTS", "")
		Set("DB_CONNECT_INTERVAL", "")
	})

	assert.Equal(t, defaultConnectAttempts, DBConnectAttempts())
	assert.Equal(t, 250*time.Millisecond, DBConnectInterval())
	assert.Equal(t, defaultReconnectEvery, DBReconnectInterval())
	assert.Equal(t, int64(defaultUploadMaxBytes), UploadMaxBytes())

	Set("DB_CONNECT_INTERVAL", "7")
	assert.Equal(t, 7*time.Second, DBConnectInterval())
}

func TestDatabaseDriverRejectsUnknown(t *testing.T) {
	Set("DB_DRIVER", "oracle")
	t.Cleanup(func() { Set("DB_DRIVER", defaultDatabaseDriver) })

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
}
