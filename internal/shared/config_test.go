package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "discq.db" {
			t.Errorf("expected database path discq.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Discogs.UserAgent != "discq/0.3" {
			t.Errorf("expected user agent discq/0.3, got %s", config.Credentials.Discogs.UserAgent)
		}

		if config.Export.Sort != "artist_asc" {
			t.Errorf("expected default sort artist_asc, got %s", config.Export.Sort)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[credentials.discogs]
consumer_key = "test_key"
consumer_secret = "test_secret"
oauth_token = "test_token"
oauth_token_secret = "test_token_secret"
user_agent = "test-agent/1.0"

[export]
template_path = "/templates/custom.csv"
output_dir = "/exports"
sort = "year_desc"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Credentials.Discogs.ConsumerKey != "test_key" {
			t.Errorf("expected consumer key test_key, got %s", config.Credentials.Discogs.ConsumerKey)
		}

		if config.Export.Sort != "year_desc" {
			t.Errorf("expected sort year_desc, got %s", config.Export.Sort)
		}

		t.Run("missing file", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(tmpDir, "nope.toml")); err == nil {
				t.Error("expected an error for a missing file")
			}
		})

		t.Run("invalid toml", func(t *testing.T) {
			bad := filepath.Join(tmpDir, "bad.toml")
			if err := os.WriteFile(bad, []byte("not [valid"), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := LoadConfig(bad); err == nil {
				t.Error("expected an error for invalid TOML")
			}
		})
	})

	t.Run("SaveConfig round trips", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		if err := config.Credentials.Discogs.Update("tok", "sec"); err != nil {
			t.Fatalf("Update: %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}

		if loaded.Credentials.Discogs.Token != "tok" || loaded.Credentials.Discogs.TokenSecret != "sec" {
			t.Errorf("expected saved token pair, got %+v", loaded.Credentials.Discogs)
		}
	})
}

func TestDiscogsConfig(t *testing.T) {
	t.Run("HasConsumer and HasToken", func(t *testing.T) {
		var d DiscogsConfig
		if d.HasConsumer() || d.HasToken() {
			t.Error("expected empty config to have nothing")
		}

		d.ConsumerKey = "k"
		d.ConsumerSecret = "s"
		if !d.HasConsumer() {
			t.Error("expected consumer pair detected")
		}

		if err := d.Update("tok", "sec"); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !d.HasToken() {
			t.Error("expected token pair detected")
		}
	})

	t.Run("Update rejects empty tokens", func(t *testing.T) {
		var d DiscogsConfig
		if err := d.Update("", "sec"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("Map carries every credential", func(t *testing.T) {
		d := DiscogsConfig{
			ConsumerKey:    "k",
			ConsumerSecret: "s",
			Token:          "t",
			TokenSecret:    "ts",
			UserAgent:      "agent",
		}

		m := d.Map()
		for key, want := range map[string]string{
			"consumer_key":       "k",
			"consumer_secret":    "s",
			"oauth_token":        "t",
			"oauth_token_secret": "ts",
			"user_agent":         "agent",
		} {
			if m[key] != want {
				t.Errorf("expected %s=%s, got %s", key, want, m[key])
			}
		}
	})
}
