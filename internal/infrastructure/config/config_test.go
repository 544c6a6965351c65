package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
verifier:
  manifest_paths: ["./devices", "./lamps.yaml"]
  fail_fast: true
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  enabled: true
  host: "0.0.0.0"
  port: 9090
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Verifier.ManifestPaths) != 2 || cfg.Verifier.ManifestPaths[1] != "./lamps.yaml" {
		t.Errorf("Verifier.ManifestPaths = %v", cfg.Verifier.ManifestPaths)
	}
	if !cfg.Verifier.FailFast {
		t.Error("Verifier.FailFast = false, want true")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 9090)
	}
	// untouched sections keep their defaults
	if cfg.API.MaxBodyBytes != 1<<20 {
		t.Errorf("API.MaxBodyBytes = %d, want default", cfg.API.MaxBodyBytes)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
database:
  path: ""
api:
  port: 70000
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	// all problems are reported at once
	for _, want := range []string{"database.path", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %v, want mention of %s", err, want)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if cfg.MQTT.Enabled || cfg.API.Enabled || cfg.InfluxDB.Enabled {
		t.Error("Default() enables optional services")
	}
	if cfg.Database.Path == "" {
		t.Error("Default() has no database path")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:    "missing database path",
			modify:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "invalid qos",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without host",
			modify: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "influxdb enabled without url",
			modify:  func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Org = "org" },
			wantErr: "influxdb.url",
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHELLEY_DATABASE_PATH", "/env/shelley.db")
	t.Setenv("SHELLEY_MQTT_ENABLED", "true")
	t.Setenv("SHELLEY_MQTT_HOST", "env-broker")
	t.Setenv("SHELLEY_API_PORT", "8181")
	t.Setenv("SHELLEY_API_ENABLED", "not-a-bool")
	t.Setenv("SHELLEY_MANIFEST_PATHS", "a"+string(os.PathListSeparator)+"b")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/env/shelley.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/env/shelley.db")
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT = %+v, want enabled with env-broker", cfg.MQTT)
	}
	if cfg.API.Port != 8181 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8181)
	}
	if cfg.API.Enabled {
		t.Error("API.Enabled = true, want fallback false for unparsable value")
	}
	if len(cfg.Verifier.ManifestPaths) != 2 {
		t.Errorf("Verifier.ManifestPaths = %v, want [a b]", cfg.Verifier.ManifestPaths)
	}
}

func TestTimeouts(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %vs, want 30s", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 30 {
		t.Errorf("GetWriteTimeout() = %vs, want 30s", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %vs, want 60s", got)
	}
}
