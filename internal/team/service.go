package team

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// VerificationSender triggers delivery of a verification email.
type VerificationSender interface {
	SendVerification(ctx context.Context, v notify.Verification) error
}

// EventPublisher announces membership and session changes.
type EventPublisher interface {
	PublishTeamEvent(ctx context.Context, e notify.TeamEvent) error
	PublishAuthEvent(ctx context.Context, e notify.AuthEvent) error
}

// Metrics records workflow outcomes. influxdb.Client satisfies it.
type Metrics interface {
	RecordAuthEvent(kind, outcome string)
	RecordTeamEvent(company, action string)
}

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopNotifier struct{}

func (noopNotifier) SendVerification(context.Context, notify.Verification) error { return nil }
func (noopNotifier) PublishTeamEvent(context.Context, notify.TeamEvent) error    { return nil }
func (noopNotifier) PublishAuthEvent(context.Context, notify.AuthEvent) error    { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordAuthEvent(string, string) {}
func (noopMetrics) RecordTeamEvent(string, string) {}

// Auth event kinds reported to Metrics.
const (
	eventRegister = "register"
	eventVerify   = "verify"
	eventLogin    = "login"
	eventRefresh  = "refresh"
	eventLogout   = "logout"
)

// Config holds workflow settings.
type Config struct {
	// PublicURL prefixes verification links.
	PublicURL string

	// RefreshTTL is the lifetime of each refresh token. Zero uses
	// auth.DefaultRefreshTTL.
	RefreshTTL time.Duration

	// RequireVerifiedLogin rejects logins from unverified accounts.
	RequireVerifiedLogin bool
}

// Deps are the Service collaborators. Sender, Events, Metrics and Logger
// are optional.
type Deps struct {
	Users     *user.Directory
	Companies *company.Registry
	Hasher    *auth.Hasher
	Tokens    *auth.Tokens
	Sessions  auth.TokenRepository
	Sender    VerificationSender
	Events    EventPublisher
	Metrics   Metrics
	Logger    Logger
	Config    Config
}

// Service runs the account and team workflows.
//
// It holds no state of its own; consistency comes from the directory and
// registry locks.
type Service struct {
	users     *user.Directory
	companies *company.Registry
	hasher    *auth.Hasher
	tokens    *auth.Tokens
	sessions  auth.TokenRepository
	sender    VerificationSender
	events    EventPublisher
	metrics   Metrics
	logger    Logger
	cfg       Config
	now       func() time.Time
}

// New validates deps and returns a Service.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.Users == nil:
		return nil, fmt.Errorf("%w: user directory", ErrMissingDependency)
	case deps.Companies == nil:
		return nil, fmt.Errorf("%w: company registry", ErrMissingDependency)
	case deps.Hasher == nil:
		return nil, fmt.Errorf("%w: password hasher", ErrMissingDependency)
	case deps.Tokens == nil:
		return nil, fmt.Errorf("%w: token issuer", ErrMissingDependency)
	case deps.Sessions == nil:
		return nil, fmt.Errorf("%w: session repository", ErrMissingDependency)
	}

	s := &Service{
		users:     deps.Users,
		companies: deps.Companies,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		sessions:  deps.Sessions,
		sender:    deps.Sender,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		cfg:       deps.Config,
		now:       time.Now,
	}
	if s.sender == nil {
		s.sender = noopNotifier{}
	}
	if s.events == nil {
		s.events = noopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.cfg.RefreshTTL <= 0 {
		s.cfg.RefreshTTL = auth.DefaultRefreshTTL
	}
	return s, nil
}

// actorCompany resolves the actor's account and the company named on it.
func (s *Service) actorCompany(actor string) (user.User, string, error) {
	u, err := s.users.Get(actor)
	if err != nil {
		return user.User{}, "", fmt.Errorf("%w: %s", ErrUnknownActor, user.NormalizeEmail(actor))
	}
	if u.CompanyName == "" {
		return user.User{}, "", fmt.Errorf("%w: %s", ErrNoCompany, u.Email)
	}
	return u, u.CompanyName, nil
}

// CompanyOf returns the company the actor currently belongs to. Removed
// members keep the name on their account but are refused here.
func (s *Service) CompanyOf(actor string) (string, error) {
	u, name, err := s.actorCompany(actor)
	if err != nil {
		return "", err
	}
	if !s.companies.IsMember(name, u.Email) {
		return "", fmt.Errorf("%w: %s in %q", ErrNotMember, u.Email, name)
	}
	return name, nil
}

// sendVerification issues a verification token for u and hands it to the
// sender. Failures are logged only.
func (s *Service) sendVerification(ctx context.Context, u user.User) {
	token, err := s.tokens.IssueVerification(u.Email)
	if err != nil {
		s.logger.Error("issuing verification token failed", "email", u.Email, "error", err)
		return
	}

	v := notify.Verification{
		Email:     u.Email,
		FullName:  u.FullName,
		Company:   u.CompanyName,
		Token:     token,
		Link:      notify.VerificationLink(s.cfg.PublicURL, token),
		ExpiresAt: s.now().Add(s.tokens.VerificationTTL()).UTC(),
	}
	if err := s.sender.SendVerification(ctx, v); err != nil {
		s.logger.Warn("sending verification failed", "email", u.Email, "error", err)
	}
}

// announce publishes a team event and records it. Failures are logged only.
func (s *Service) announce(ctx context.Context, e notify.TeamEvent) {
	e.At = s.now().UTC()
	s.metrics.RecordTeamEvent(e.Company, e.Type)
	if err := s.events.PublishTeamEvent(ctx, e); err != nil {
		s.logger.Warn("publishing team event failed",
			"type", e.Type, "company", e.Company, "error", err)
	}
}

// announceAuth publishes a session event. Failures are logged only.
func (s *Service) announceAuth(ctx context.Context, e notify.AuthEvent) {
	e.At = s.now().UTC()
	if err := s.events.PublishAuthEvent(ctx, e); err != nil {
		s.logger.Warn("publishing auth event failed",
			"type", e.Type, "email", e.Email, "error", err)
	}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
