package config_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/config"
)

func TestHolder_GetAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cafeapi.yaml")
	write := func(max int) {
		t.Helper()
		content := `
auth:
  jwt_secret: "` + testSecret + `"
rate_limit:
  max: ` + strconv.Itoa(max) + `
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	write(100)

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	if got := h.Get().RateLimit.Max; got != 100 {
		t.Errorf("Max = %d, want 100", got)
	}

	var notified *config.Config
	h.OnChange(func(c *config.Config) { notified = c })

	write(25)
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := h.Get().RateLimit.Max; got != 25 {
		t.Errorf("Max after reload = %d, want 25", got)
	}
	if notified == nil || notified.RateLimit.Max != 25 {
		t.Error("OnChange callback not invoked with new config")
	}
}

func TestHolder_ReloadKeepsOldOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cafeapi.yaml")
	good := `
auth:
  jwt_secret: "` + testSecret + `"
`
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	// Break the file: secret too short.
	if err := os.WriteFile(path, []byte("auth: {jwt_secret: bad}"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("Reload of invalid config succeeded")
	}
	if h.Get().Auth.JWTSecret != testSecret {
		t.Error("old config lost after failed reload")
	}
}
