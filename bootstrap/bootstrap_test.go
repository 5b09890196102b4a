package bootstrap_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lionscafe/api/bootstrap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setEnv(t *testing.T, dbPath string) {
	t.Helper()
	t.Setenv("CAFE_JWT_SECRET", testSecret)
	t.Setenv("CAFE_DATABASE_DSN", dbPath)
	t.Setenv("CAFE_LOG_LEVEL", "error")
}

func TestBootstrap_EnvOnly(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "test.db"))

	app, err := bootstrap.New(bootstrap.Options{})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer app.Shutdown()

	if app.DB == nil {
		t.Error("DB should not be nil")
	}
	if app.HTTPServer == nil {
		t.Fatal("HTTPServer should not be nil")
	}
	if app.Holder != nil {
		t.Error("Holder should be nil without a config file")
	}

	// The wired router should answer health checks.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	app.HTTPServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status field = %v, want ok", body["status"])
	}
}

func TestBootstrap_RepeatedConstruction(t *testing.T) {
	// Each App carries its own metrics registry, so building a second
	// one in the same process must not collide.
	dir := t.TempDir()

	setEnv(t, filepath.Join(dir, "first.db"))
	first, err := bootstrap.New(bootstrap.Options{})
	if err != nil {
		t.Fatalf("create first app: %v", err)
	}
	first.Shutdown()

	t.Setenv("CAFE_DATABASE_DSN", filepath.Join(dir, "second.db"))
	second, err := bootstrap.New(bootstrap.Options{})
	if err != nil {
		t.Fatalf("create second app: %v", err)
	}
	defer second.Shutdown()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	second.HTTPServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
}

func TestBootstrap_DatabaseMigration(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "migrate.db"))

	app, err := bootstrap.New(bootstrap.Options{})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer app.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, table := range []string{"users", "action_tokens", "menu_categories", "menu_items", "dining_tables", "orders", "order_lines", "reservations"} {
		var count int
		if err := app.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Errorf("query %s table: %v", table, err)
		}
	}
}

func TestBootstrap_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cafeapi.yaml")
	yaml := `
env: test
server:
  port: 0
database:
  dsn: ` + filepath.Join(dir, "file.db") + `
auth:
  jwt_secret: ` + testSecret + `
logging:
  level: error
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := bootstrap.New(bootstrap.Options{ConfigPath: cfgPath, DisableWatch: true})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer app.Shutdown()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	app.HTTPServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
}

func TestBootstrap_MissingSecret(t *testing.T) {
	t.Setenv("CAFE_JWT_SECRET", "")
	t.Setenv("CAFE_DATABASE_DSN", filepath.Join(t.TempDir(), "nope.db"))

	if _, err := bootstrap.New(bootstrap.Options{}); err == nil {
		t.Fatal("expected error without a JWT secret")
	}
}
