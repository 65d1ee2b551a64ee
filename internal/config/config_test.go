package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.StorageType != "bbolt" || cfg.DevicesFile != "./configs/devices.yaml" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "15")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_TYPE", "none")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 15*time.Second || cfg.LogLevel != "debug" || cfg.StorageType != "none" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0")
	if _, err := load(viper.New()); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}
