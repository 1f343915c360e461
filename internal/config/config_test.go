package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SENDGRID_API_KEY",
		"MAILRELAY_EMAIL_SENDGRID_API_KEY",
		"MAILRELAY_EMAIL_PROVIDER",
		"MAILRELAY_SERVER_PORT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	store, err := Load("")
	require.NoError(t, err)

	cfg := store.Current()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sendgrid", cfg.Email.Provider)
	assert.Equal(t, "your-email@example.com", cfg.Email.From.Address)
	assert.Equal(t, "Your Name", cfg.Email.From.Name)
	assert.Equal(t, "https://api.sendgrid.com", cfg.Email.SendGrid.BaseURL)
	assert.Empty(t, cfg.Email.SendGrid.APIKey)
	assert.Empty(t, store.File())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), `
server:
  port: 9090
email:
  provider: " SendGrid "
  from:
    address: relay@example.org
    name: Relay
  sendgrid:
    api_key: SG.file-key
    base_url: http://localhost:3000/
`)

	store, err := Load(path)
	require.NoError(t, err)

	cfg := store.Current()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "sendgrid", cfg.Email.Provider)
	assert.Equal(t, "relay@example.org", cfg.Email.From.Address)
	assert.Equal(t, "Relay", cfg.Email.From.Name)
	assert.Equal(t, "SG.file-key", cfg.Email.SendGrid.APIKey)
	assert.Equal(t, "http://localhost:3000", cfg.Email.SendGrid.BaseURL)
	assert.Equal(t, path, store.File())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILRELAY_SERVER_PORT", "7070")
	t.Setenv("MAILRELAY_EMAIL_PROVIDER", "log")
	t.Setenv("MAILRELAY_EMAIL_SENDGRID_API_KEY", "SG.prefixed")

	store, err := Load("")
	require.NoError(t, err)

	cfg := store.Current()
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, "SG.prefixed", cfg.Email.SendGrid.APIKey)
}

func TestLoad_SendGridAPIKeyAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("SENDGRID_API_KEY", "SG.alias")

	store, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "SG.alias", store.Current().Email.SendGrid.APIKey)
}

func TestStore_Reload(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "email:\n  sendgrid:\n    api_key: SG.first\n")

	store, err := Load(path)
	require.NoError(t, err)
	first := store.Current()
	assert.Equal(t, "SG.first", first.Email.SendGrid.APIKey)

	var seen []string
	store.OnChange(func(cfg *Config) {
		seen = append(seen, cfg.Email.SendGrid.APIKey)
	})

	writeConfig(t, dir, "email:\n  sendgrid:\n    api_key: SG.second\n")
	require.NoError(t, store.Reload())

	assert.Equal(t, "SG.second", store.Current().Email.SendGrid.APIKey)
	assert.Equal(t, "SG.first", first.Email.SendGrid.APIKey, "old snapshot must stay intact")
	assert.Equal(t, []string{"SG.second"}, seen)
}

// replaceConfig swaps the file in with a rename so the watcher never sees it half written.
func replaceConfig(t *testing.T, path, body string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(body), 0o600))
	require.NoError(t, os.Rename(tmp, path))
}

func TestStore_Watch(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "email:\n  sendgrid:\n    api_key: SG.one\n")

	store, err := Load(path)
	require.NoError(t, err)

	errs := make(chan error, 8)
	store.Watch(func(err error) {
		errs <- err
	})

	replaceConfig(t, path, "email:\n  sendgrid:\n    api_key: SG.two\n")

	require.Eventually(t, func() bool {
		return store.Current().Email.SendGrid.APIKey == "SG.two"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Empty(t, errs)
	require.ErrorIs(t, store.Reload(), ErrWatching)
}

func TestStore_Watch_BadRewriteKeepsSnapshot(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "email:\n  sendgrid:\n    api_key: SG.one\n")

	store, err := Load(path)
	require.NoError(t, err)

	errs := make(chan error, 8)
	store.Watch(func(err error) {
		errs <- err
	})

	replaceConfig(t, path, "email: [unclosed\n")

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "failed to read config file")
	case <-time.After(5 * time.Second):
		t.Fatal("onError was not called for an unparsable config file")
	}
	assert.Equal(t, "SG.one", store.Current().Email.SendGrid.APIKey)
}

func TestStore_StaticAndSet(t *testing.T) {
	store := Static(&Config{Email: EmailConfig{Provider: "log"}})
	assert.Equal(t, "log", store.Current().Email.Provider)
	assert.Empty(t, store.File())
	require.NoError(t, store.Reload())

	store.Set(&Config{Email: EmailConfig{Provider: "sendgrid"}})
	assert.Equal(t, "sendgrid", store.Current().Email.Provider)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := Config{Email: EmailConfig{SendGrid: SendGridConfig{APIKey: "SG.abcdefghijkl"}}}

	red := cfg.Redacted()
	assert.Equal(t, "SG.a********", red.Email.SendGrid.APIKey)
	assert.Equal(t, "SG.abcdefghijkl", cfg.Email.SendGrid.APIKey)

	short := Config{Email: EmailConfig{SendGrid: SendGridConfig{APIKey: "abc"}}}
	assert.Equal(t, "****", short.Redacted().Email.SendGrid.APIKey)

	empty := Config{}
	assert.Empty(t, empty.Redacted().Email.SendGrid.APIKey)
}
