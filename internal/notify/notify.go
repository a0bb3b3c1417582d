package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/infrastructure/mqtt"
)

// Team event types.
const (
	EventMemberAdded       = "member_added"
	EventMemberRemoved     = "member_removed"
	EventPrivilegesUpdated = "privileges_updated"
)

// Auth event types.
const (
	AuthLogin      = "login"
	AuthLogout     = "logout"
	AuthLogoutAll  = "logout_all"
	AuthTokenReuse = "token_reuse"
)

// Verification asks the mailer to send an email-verification message.
type Verification struct {
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Company   string    `json:"company,omitempty"`
	Token     string    `json:"token"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TeamEvent describes one membership change.
type TeamEvent struct {
	Type       string    `json:"type"`
	Company    string    `json:"company"`
	Actor      string    `json:"actor"`
	Member     string    `json:"member"`
	Privileges []string  `json:"privileges,omitempty"`
	At         time.Time `json:"at"`
}

// AuthEvent describes one session change for an account.
type AuthEvent struct {
	Type    string    `json:"type"`
	Email   string    `json:"email"`
	Company string    `json:"company,omitempty"`
	Session string    `json:"session,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher is the part of the MQTT client notify needs.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// Logger is the logging interface used by the notifiers.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// VerificationLink builds the link a user follows to verify their email.
// An empty base yields a relative link.
func VerificationLink(base, token string) string {
	return strings.TrimRight(base, "/") + "/api/v1/auth/verify?token=" + url.QueryEscape(token)
}

// MQTT publishes notifications through the broker.
type MQTT struct {
	pub    Publisher
	logger Logger
}

// NewMQTT returns a notifier publishing through pub.
func NewMQTT(pub Publisher) *MQTT {
	return &MQTT{pub: pub, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (n *MQTT) SetLogger(logger Logger) {
	n.logger = logger
}

// SendVerification publishes v to the mail topic.
func (n *MQTT) SendVerification(ctx context.Context, v Verification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.pub.PublishJSON(mqtt.Topics{}.MailVerification(), v); err != nil {
		return fmt.Errorf("publishing verification for %s: %w", v.Email, err)
	}
	n.logger.Info("verification requested", "email", v.Email)
	return nil
}

// PublishTeamEvent publishes e to the company's event topic.
func (n *MQTT) PublishTeamEvent(ctx context.Context, e TeamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.pub.PublishJSON(mqtt.Topics{}.TeamEvents(e.Company), e); err != nil {
		return fmt.Errorf("publishing %s event for %q: %w", e.Type, e.Company, err)
	}
	return nil
}

// PublishAuthEvent publishes e to the topic for its type.
func (n *MQTT) PublishAuthEvent(ctx context.Context, e AuthEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.pub.PublishJSON(mqtt.Topics{}.AuthEvents(e.Type), e); err != nil {
		return fmt.Errorf("publishing %s event for %s: %w", e.Type, e.Email, err)
	}
	return nil
}

// Log writes notifications to the service log. Used when MQTT is off.
type Log struct {
	logger Logger
}

// NewLog returns a notifier writing to logger.
func NewLog(logger Logger) *Log {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Log{logger: logger}
}

// SendVerification logs the verification link.
func (n *Log) SendVerification(_ context.Context, v Verification) error {
	n.logger.Warn("mail transport disabled, verification link logged instead",
		"email", v.Email, "link", v.Link, "expires_at", v.ExpiresAt)
	return nil
}

// PublishTeamEvent logs e.
func (n *Log) PublishTeamEvent(_ context.Context, e TeamEvent) error {
	n.logger.Info("team event",
		"type", e.Type, "company", e.Company, "actor", e.Actor, "member", e.Member)
	return nil
}

// PublishAuthEvent logs e.
func (n *Log) PublishAuthEvent(_ context.Context, e AuthEvent) error {
	n.logger.Info("auth event", "type", e.Type, "email", e.Email, "session", e.Session)
	return nil
}
