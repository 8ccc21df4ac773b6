package config

import (
	"os"
	"path/filepath"
	"testing"
)

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8081 {
		t.Errorf("expected default port 8081, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "gymscore.db" {
		t.Errorf("expected default database, got %q", cfg.DatabaseURL)
	}
	if cfg.AdminUser != "admin" {
		t.Errorf("expected default admin user, got %q", cfg.AdminUser)
	}
	if cfg.SecretKey == "" || !cfg.SecretGenerated {
		t.Error("expected a generated secret key")
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("expected no CORS origins by default, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GYMSCORE_PORT", "9090")
	t.Setenv("GYMSCORE_SECRET_KEY", "s3cret")
	t.Setenv("GYMSCORE_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("GYMSCORE_LOG_FILE", "/tmp/gym.log")

	cfg, err := Load(nil, missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.SecretKey != "s3cret" || cfg.SecretGenerated {
		t.Errorf("expected configured secret, got %q (generated=%v)", cfg.SecretKey, cfg.SecretGenerated)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
	if cfg.LogFile != "/tmp/gym.log" {
		t.Errorf("expected log file from env, got %q", cfg.LogFile)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GYMSCORE_ADMIN_USER=headjudge\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GYMSCORE_ADMIN_USER") })

	cfg, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AdminUser != "headjudge" {
		t.Errorf("expected admin user from .env, got %q", cfg.AdminUser)
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("GYMSCORE_PORT", "9090")

	cfg, err := Load([]string{"-port", "7000", "-db", "postgres://localhost/gym", "-open", "-debug"}, missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 7000 {
		t.Errorf("expected flag port 7000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost/gym" {
		t.Errorf("expected flag db, got %q", cfg.DatabaseURL)
	}
	if !cfg.OpenBrowser {
		t.Error("expected OpenBrowser to be set")
	}
	if cfg.EffectiveLogLevel() != "debug" {
		t.Errorf("expected debug log level in debug mode, got %q", cfg.EffectiveLogLevel())
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	_, err := Load([]string{"-port", "70000"}, missingEnvFile(t))
	if err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("GYMSCORE_PORT", "not-a-number")

	if _, err := Load(nil, missingEnvFile(t)); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestLoad_UnknownFlag(t *testing.T) {
	if _, err := Load([]string{"-nope"}, missingEnvFile(t)); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Port: 8081}
	if cfg.Addr() != ":8081" {
		t.Errorf("expected :8081, got %q", cfg.Addr())
	}
}
