package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validOAuthJSON = `{
  "installed": {
    "client_id": "ward-rota.apps.googleusercontent.com",
    "project_id": "ward-rota",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "secret",
    "redirect_uris": ["http://localhost"]
  }
}`

func validOAuthClient() *OAuthClientConfig {
	return &OAuthClientConfig{
		Installed: OAuthInstalled{
			ClientID:                "ward-rota.apps.googleusercontent.com",
			ProjectID:               "ward-rota",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestValidateOAuthClient(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *OAuthClientConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *OAuthClientConfig) {}},
		{name: "missing client id", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.ClientID = "" }, wantErr: true},
		{name: "invalid auth uri", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.AuthURI = "not-a-url" }, wantErr: true},
		{name: "no redirect uris", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.RedirectURIs = []string{} }, wantErr: true},
		{name: "invalid redirect uri", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.RedirectURIs = []string{"not a uri"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validOAuthClient()
			tt.mutate(cfg)

			err := ValidateOAuthClient(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "oauth client validation failed")
		})
	}
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte(validOAuthJSON), 0644))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "ward-rota", cfg.Installed.ProjectID)
	assert.Equal(t, []string{"http://localhost"}, cfg.Installed.RedirectURIs)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"installed": {`), 0644))
	_, err = LoadOAuthClientFromPath(badPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse oauth client file")

	_, err = LoadOAuthClientFromPath(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read oauth client file")
}

func TestLoadOAuthClient_ExplicitPathWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "sheets-client.json")
	require.NoError(t, os.WriteFile(path, []byte(validOAuthJSON), 0644))

	cfg := minimalConfig()
	cfg.Sheets.OAuthClientFile = path

	oauthCfg, err := LoadOAuthClient(cfg, "prod")
	require.NoError(t, err)
	assert.Equal(t, "secret", oauthCfg.Installed.ClientSecret)

	_, err = LoadOAuthClient(minimalConfig(), "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oauth client file not found")
}

func TestLoadOAuthClientWithEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, os.WriteFile("oauthClient.test.json", []byte(validOAuthJSON), 0644))

	cfg, err := LoadOAuthClientWithEnv("test")
	require.NoError(t, err)
	assert.Equal(t, "ward-rota", cfg.Installed.ProjectID)
}
