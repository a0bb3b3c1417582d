package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/fleetauth-core/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "fleetauth-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"system status", Topics{}.SystemStatus(), "fleetauth/system/status"},
		{"mail verification", Topics{}.MailVerification(), "fleetauth/mail/verification"},
		{"team events", Topics{}.TeamEvents("Acme"), "fleetauth/events/team/acme"},
		{"team events with spaces", Topics{}.TeamEvents(" Acme Haulage "), "fleetauth/events/team/acme_haulage"},
		{"team events with wildcards", Topics{}.TeamEvents("a/b+c#d"), "fleetauth/events/team/a_b_c_d"},
		{"auth events", Topics{}.AuthEvents("login"), "fleetauth/events/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSegment_Empty(t *testing.T) {
	if got := Segment("   "); got != "_" {
		t.Errorf("Segment(blank) = %q, want %q", got, "_")
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "core", Password: "secret"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Fatalf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "fleetauth-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "core" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("AutoReconnect and CleanSession should be enabled")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS should not be configured for plain tcp")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].String(); got != "ssl://127.0.0.1:8883" {
		t.Errorf("broker = %q, want ssl://127.0.0.1:8883", got)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS 1.2 minimum not configured")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "fleetauth-test")

	if !opts.WillEnabled || !opts.WillRetained {
		t.Fatal("will should be enabled and retained")
	}
	if opts.WillTopic != "fleetauth/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}

	var p statusPayload
	if err := json.Unmarshal(opts.WillPayload, &p); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if p.Status != "offline" || p.Reason != "unexpected_disconnect" {
		t.Errorf("will payload = %+v", p)
	}
}

func TestStatusPayloads(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus string
		wantReason string
	}{
		{"online", buildOnlinePayload(`id"with"quotes`), "online", ""},
		{"offline", buildOfflinePayload(`id"with"quotes`), "offline", "graceful_shutdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p statusPayload
			if err := json.Unmarshal([]byte(tt.payload), &p); err != nil {
				t.Fatalf("payload is not JSON: %v", err)
			}
			if p.Status != tt.wantStatus || p.Reason != tt.wantReason {
				t.Errorf("payload = %+v", p)
			}
			if p.ClientID != `id"with"quotes` {
				t.Errorf("ClientID = %q", p.ClientID)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	client := &Client{}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"wildcard topic", "fleetauth/events/team/+", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "fleetauth/test", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "fleetauth/test", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "fleetauth/test", []byte("x"), 1, ErrNotConnected},
		{"nil payload not connected", "fleetauth/test", nil, 0, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishJSON_EncodingError(t *testing.T) {
	client := &Client{}

	err := client.PublishJSON("fleetauth/test", map[string]any{"bad": make(chan int)})
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("PublishJSON() error = %v, want ErrPublishFailed", err)
	}
	if !strings.Contains(err.Error(), "encoding payload") {
		t.Errorf("error should mention encoding: %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() = true for zero client")
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	client := &Client{}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &Client{}
	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestClose_Unconnected(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCallbacks_Invoked(t *testing.T) {
	client := &Client{}

	var disconnectErr error
	client.SetOnDisconnect(func(err error) { disconnectErr = err })

	logger := &mockLogger{}
	client.SetLogger(logger)

	lost := errors.New("link down")
	client.handleDisconnect(lost)

	if !errors.Is(disconnectErr, lost) {
		t.Errorf("disconnect callback got %v, want %v", disconnectErr, lost)
	}
	if logger.warnCount() != 1 {
		t.Errorf("Warn calls = %d, want 1", logger.warnCount())
	}
}
