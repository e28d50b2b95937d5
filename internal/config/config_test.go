// Package config provides configuration management for the Pitchside analysis service.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	expectedNoErrorMsg    = "expected no error, got %v"
	expectedNonNilConfig  = "expected non-nil config"
	pitchsideName         = "pitchside"
	developmentEnv        = "development"
	localhostHost         = "localhost"
	postgresPort          = 5432
	expandedSecretValue   = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != pitchsideName {
		t.Errorf("expected app name '%s', got '%s'", pitchsideName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if cfg.Quota.DailyFreeLimit != 2 {
		t.Errorf("expected daily free limit 2, got %d", cfg.Quota.DailyFreeLimit)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvExpansion tests ${VAR} placeholder expansion
func TestLoadConfigEnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", expandedSecretValue)
	os.Setenv("TEST_SPORTS_KEY", "expanded-sports-key")
	defer os.Unsetenv("TEST_DB_PASSWORD")
	defer os.Unsetenv("TEST_SPORTS_KEY")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected expanded password '%s', got '%s'", expandedSecretValue, cfg.Database.Password)
	}

	if cfg.SportsAPI.APIKey != "expanded-sports-key" {
		t.Errorf("expected expanded api key, got '%s'", cfg.SportsAPI.APIKey)
	}
}

// TestValidateValidConfig tests validation of a complete configuration
func TestValidateValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config to pass validation, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests environment validation
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = "invalid"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
	if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("expected environment in error, got %v", err)
	}
}

// TestValidateInvalidTimezone tests the quota timezone validator
func TestValidateInvalidTimezone(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.Quota.Timezone = "Mars/Olympus_Mons"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for bogus timezone")
	}
}

// TestValidateProductionRequiresSSL tests production SSL enforcement
func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for disabled SSL in production")
	}
}

// TestLoadWithDefaults tests default values are applied without a file
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Quota.DailyFreeLimit != 2 {
		t.Errorf("expected default daily free limit 2, got %d", cfg.Quota.DailyFreeLimit)
	}
	if cfg.Quota.PremiumDurationDays != 7 {
		t.Errorf("expected default premium duration 7 days, got %d", cfg.Quota.PremiumDurationDays)
	}
	if cfg.AIService.TimeoutSeconds != 15 {
		t.Errorf("expected default ai timeout 15s, got %d", cfg.AIService.TimeoutSeconds)
	}
}

// TestGetDatabaseDSN tests DSN string construction
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected postgres DSN, got %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected sslmode in DSN, got %s", dsn)
	}
}
