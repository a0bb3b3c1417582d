package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
service:
  name: "fleetauth-test"
storage:
  dir: "/var/lib/fleetauth"
  secret: "storage-secret-at-least-32-characters"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
    access_token_ttl: 5
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "fleetauth-test" {
		t.Errorf("Service.Name = %q, want %q", cfg.Service.Name, "fleetauth-test")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if got := cfg.Storage.UsersPath(); got != filepath.Join("/var/lib/fleetauth", "users.enc") {
		t.Errorf("UsersPath() = %q", got)
	}
	if got := cfg.Security.JWT.AccessTTL(); got != 5*time.Minute {
		t.Errorf("AccessTTL() = %v, want 5m", got)
	}
	// Defaults survive for keys the file leaves out.
	if cfg.Security.JWT.RefreshTokenTTL != 10080 {
		t.Errorf("RefreshTokenTTL = %d, want default 10080", cfg.Security.JWT.RefreshTokenTTL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "invalid: [yaml: content")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_SecretsFromEnv(t *testing.T) {
	configPath := writeConfig(t, "service:\n  name: fleetauth\n")
	t.Setenv("FLEETAUTH_STORAGE_SECRET", "storage-secret-at-least-32-characters")
	t.Setenv("FLEETAUTH_JWT_SECRET", validSecret)

	if _, err := Load(configPath); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "/tmp/test.db"
api:
  port: 8080
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for missing secrets, got nil")
	}
	// Every problem is reported together.
	for _, want := range []string{"storage.secret", "security.jwt.secret"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Storage.Secret = "storage-secret-at-least-32-characters"
	cfg.Security.JWT.Secret = validSecret
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing service name", func(c *Config) { c.Service.Name = "" }, true},
		{"missing storage dir", func(c *Config) { c.Storage.Dir = "" }, true},
		{"short storage secret", func(c *Config) { c.Storage.Secret = "short" }, true},
		{"missing salt", func(c *Config) { c.Storage.Salt = "" }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"mqtt enabled without host", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker.Host = "" }, true},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, true},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, true},
		{"tls without cert", func(c *Config) { c.API.TLS.Enabled = true }, true},
		{"influx enabled without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"missing JWT secret", func(c *Config) { c.Security.JWT.Secret = "" }, true},
		{"JWT secret too short", func(c *Config) { c.Security.JWT.Secret = "short" }, true},
		{"rate limit zero", func(c *Config) { c.Security.RateLimit.RequestsPerMinute = 0 }, true},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimit.Enabled = false
			c.Security.RateLimit.RequestsPerMinute = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("FLEETAUTH_STORAGE_DIR", "/srv/fleetauth")
	t.Setenv("FLEETAUTH_DATABASE_PATH", "/custom/path.db")
	t.Setenv("FLEETAUTH_MQTT_ENABLED", "true")
	t.Setenv("FLEETAUTH_MQTT_HOST", "mqtt.example.com")
	t.Setenv("FLEETAUTH_MQTT_USERNAME", "testuser")
	t.Setenv("FLEETAUTH_MQTT_PASSWORD", "testpass")
	t.Setenv("FLEETAUTH_API_HOST", "192.168.1.1")
	t.Setenv("FLEETAUTH_API_PORT", "9090")
	t.Setenv("FLEETAUTH_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("FLEETAUTH_LOG_LEVEL", "debug")
	t.Setenv("FLEETAUTH_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		name, got, want string
	}{
		{"Storage.Dir", cfg.Storage.Dir, "/srv/fleetauth"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("FLEETAUTH_CONFIG", "")
	if got := PathFromEnv(); got != DefaultPath {
		t.Errorf("PathFromEnv() = %q, want %q", got, DefaultPath)
	}

	t.Setenv("FLEETAUTH_CONFIG", "/etc/fleetauth.yaml")
	if got := PathFromEnv(); got != "/etc/fleetauth.yaml" {
		t.Errorf("PathFromEnv() = %q, want /etc/fleetauth.yaml", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Storage.Dir == "" || cfg.Storage.Salt == "" {
		t.Error("defaultConfig should have storage dir and salt")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Enabled {
		t.Error("defaultConfig should leave MQTT disabled")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if !cfg.Security.JWT.RequireVerifiedLogin {
		t.Error("defaultConfig should require verified login")
	}
}
