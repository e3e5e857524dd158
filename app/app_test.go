package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
Title = "Test Shop"

[Webserver]
Port = 8081
URL = "http://localhost:8081"

[DB]
GormEngine = "sqlite"
Password = "secret"

[Seed]
AdminUsername = "admin"
AdminPassword = "changeme"

[Log]
LogLevel = "error"
AppName = "pos-backoffice"
ServiceName = "backoffice-test"
`

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(testConfig), 0o600))

	return dir + string(filepath.Separator)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dumpJSON = false
	})

	err := Execute()

	return out.String(), err
}

func TestConfigCommandMasksSecrets(t *testing.T) {
	dir := writeConfig(t)

	out, err := run(t, "config", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Shop")
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "changeme")

	out, err = run(t, "config", "--json", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "Test Shop"`)
}

func TestMigrateCommand(t *testing.T) {
	_, err := run(t, "migrate", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.GormEngine)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "migrate", "--config", t.TempDir()+string(filepath.Separator))
	require.Error(t, err)
}
