package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:3001/api" {
			t.Errorf("expected base URL http://localhost:3001/api, got %s", config.API.BaseURL)
		}

		if config.API.DownloadPath != "/customer/download" {
			t.Errorf("expected download path /customer/download, got %s", config.API.DownloadPath)
		}

		if config.Listing.PageSize != 10 {
			t.Errorf("expected page size 10, got %d", config.Listing.PageSize)
		}

		if config.Export.Filename != "customers.csv" {
			t.Errorf("expected export filename customers.csv, got %s", config.Export.Filename)
		}

		if config.Database.Path != "./custctl.db" {
			t.Errorf("expected database path ./custctl.db, got %s", config.Database.Path)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
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
		if config.API.BaseURL != defaultConfig.API.BaseURL {
			t.Errorf("created config base URL doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://crm.example.com/api"
download_path = "/customers/download"
timeout_seconds = 5

[listing]
page_size = 25
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://crm.example.com/api" {
			t.Errorf("expected base URL from file, got %s", config.API.BaseURL)
		}

		if config.API.DownloadPath != "/customers/download" {
			t.Errorf("expected download path /customers/download, got %s", config.API.DownloadPath)
		}

		if config.Listing.PageSize != 25 {
			t.Errorf("expected page size 25, got %d", config.Listing.PageSize)
		}

		if config.Export.Filename != "customers.csv" {
			t.Errorf("expected unset keys to keep defaults, got filename %q", config.Export.Filename)
		}

		if config.API.Timeout().Seconds() != 5 {
			t.Errorf("expected 5s timeout, got %v", config.API.Timeout())
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[listing]\npage_size = 0\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvBaseURL, "http://env.example.com")
		t.Setenv(EnvPageSize, "50")
		t.Setenv(EnvDownloadPath, "/customers/download")

		config := DefaultConfig()
		if err := config.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.API.BaseURL != "http://env.example.com" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
		if config.Listing.PageSize != 50 {
			t.Errorf("expected env page size 50, got %d", config.Listing.PageSize)
		}
		if config.API.DownloadPath != "/customers/download" {
			t.Errorf("expected env download path, got %s", config.API.DownloadPath)
		}
	})

	t.Run("ApplyEnv Bad Page Size", func(t *testing.T) {
		t.Setenv(EnvPageSize, "ten")

		if err := DefaultConfig().ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		if err := os.WriteFile(envFile, []byte("CUSTCTL_LOG_LEVEL=debug\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvLogLevel, "")
		os.Unsetenv(EnvLogLevel)

		if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		if got := os.Getenv(EnvLogLevel); got != "debug" {
			t.Errorf("expected CUSTCTL_LOG_LEVEL=debug, got %q", got)
		}
	})
}
