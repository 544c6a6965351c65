package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cajomferro/shelley-sub001/internal/infrastructure/database"
)

var deskLampManifest = filepath.Join("..", "..", "internal", "manifest", "testdata", "desklamp.yaml")

// writeConfig writes a one-shot configuration (API and MQTT disabled) and
// points SHELLEY_CONFIG at it.
func writeConfig(t *testing.T, dbPath string, manifests ...string) {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
verifier:
  manifest_paths: [` + strings.Join(quote(manifests), ", ") + `]

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  enabled: false
  host: "127.0.0.1"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("SHELLEY_CONFIG", configPath)
}

func quote(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = `"` + s + `"`
	}
	return out
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{Path: dbPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("SHELLEY_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, nil); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	writeConfig(t, "", deskLampManifest)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, nil); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_VerifiesManifests verifies a one-shot run declares every device
// and records a report for each.
func TestRun_VerifiesManifests(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	writeConfig(t, dbPath, deskLampManifest)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if n := countRows(t, dbPath, "devices"); n != 4 {
		t.Errorf("devices = %d, want 4", n)
	}
	if n := countRows(t, dbPath, "verification_reports"); n != 4 {
		t.Errorf("reports = %d, want 4", n)
	}

	// A second run skips the stored devices.
	if err := run(ctx, nil); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if n := countRows(t, dbPath, "verification_reports"); n != 4 {
		t.Errorf("reports after second run = %d, want 4", n)
	}
}

// TestRun_Rejected verifies a one-shot run with a rejected device fails.
func TestRun_Rejected(t *testing.T) {
	data, err := os.ReadFile(deskLampManifest)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	broken := strings.Replace(string(data),
		"seq: [b.pressed, b.released, ledA.on, t.started]",
		"seq: [b.pressed, b.released, ledA.off, t.started]", 1)
	manifestPath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(manifestPath, []byte(broken), 0600); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	writeConfig(t, dbPath, deskLampManifest)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arguments replace the configured manifests
	err = run(ctx, []string{manifestPath})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("run() error = %v, want ErrRejected", err)
	}
	if n := countRows(t, dbPath, "devices"); n != 3 {
		t.Errorf("devices = %d, want 3", n)
	}
}

// TestRun_MissingManifest verifies a missing manifest path fails the run.
func TestRun_MissingManifest(t *testing.T) {
	writeConfig(t, filepath.Join(t.TempDir(), "test.db"), "/nonexistent/manifests")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, nil); err == nil {
		t.Fatal("run() should fail with a missing manifest")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("SHELLEY_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("SHELLEY_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
