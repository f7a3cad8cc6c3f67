package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("ODIN_TIMEOUT", "")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Addr)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected public url %s", cfg.PublicBaseURL)
	}
	if cfg.OdinEnabled() {
		t.Fatalf("odin should be disabled without env")
	}
	if cfg.OdinTimeout != 5*time.Second {
		t.Fatalf("unexpected odin timeout %s", cfg.OdinTimeout)
	}
}

func TestLoadServer_InvalidDuration(t *testing.T) {
	t.Setenv("ODIN_TIMEOUT", "soon")
	if _, err := LoadServer(); err == nil {
		t.Fatalf("expected error for invalid ODIN_TIMEOUT")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	ok, err := LoadEnvFile(filepath.Join(dir, "missing.env"))
	if err != nil || ok {
		t.Fatalf("missing file should be (false, nil), got (%v, %v)", ok, err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PETS_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("PETS_TEST_KEY", "")
	_ = os.Unsetenv("PETS_TEST_KEY")

	ok, err = LoadEnvFile(path)
	if err != nil || !ok {
		t.Fatalf("expected file to load, got (%v, %v)", ok, err)
	}
	if os.Getenv("PETS_TEST_KEY") != "from-file" {
		t.Fatalf("expected PETS_TEST_KEY from file, got %q", os.Getenv("PETS_TEST_KEY"))
	}
}
