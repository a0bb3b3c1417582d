package team

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/database"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/user"
	"github.com/nerrad567/fleetauth-core/migrations"
)

const (
	testSecret   = "test-secret-key-for-jwt-signing-0123456789"
	testPassword = "correct-horse-battery"
)

var errDiskFull = errors.New("disk full")

// fakeNotifier records verifications and team events.
type fakeNotifier struct {
	mu            sync.Mutex
	verifications []notify.Verification
	events        []notify.TeamEvent
	authEvents    []notify.AuthEvent
	fail          bool
}

func (f *fakeNotifier) SendVerification(_ context.Context, v notify.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDiskFull
	}
	f.verifications = append(f.verifications, v)
	return nil
}

func (f *fakeNotifier) PublishTeamEvent(_ context.Context, e notify.TeamEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDiskFull
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeNotifier) PublishAuthEvent(_ context.Context, e notify.AuthEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDiskFull
	}
	f.authEvents = append(f.authEvents, e)
	return nil
}

// lastToken returns the most recent verification token sent to email.
func (f *fakeNotifier) lastToken(t *testing.T, email string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.verifications) - 1; i >= 0; i-- {
		if f.verifications[i].Email == email {
			return f.verifications[i].Token
		}
	}
	t.Fatalf("no verification sent to %s", email)
	return ""
}

func (f *fakeNotifier) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func (f *fakeNotifier) authEventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.authEvents))
	for i, e := range f.authEvents {
		out[i] = e.Type
	}
	return out
}

type fakeMetrics struct {
	mu   sync.Mutex
	auth map[string]int
	team map[string]int
}

func (m *fakeMetrics) RecordAuthEvent(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auth == nil {
		m.auth = make(map[string]int)
	}
	m.auth[kind+"/"+outcome]++
}

func (m *fakeMetrics) RecordTeamEvent(_, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.team == nil {
		m.team = make(map[string]int)
	}
	m.team[action]++
}

func (m *fakeMetrics) authCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth[key]
}

// flakyStore wraps a company store and fails every Save while fail is set.
type flakyStore struct {
	company.Store
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) Save(ctx context.Context, companies map[string]company.Company) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.Store.Save(ctx, companies)
}

func (s *flakyStore) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

type fixture struct {
	svc       *Service
	users     *user.Directory
	companies *company.Registry
	sessions  *auth.SQLiteTokenRepository
	tokens    *auth.Tokens
	notifier  *fakeNotifier
	metrics   *fakeMetrics
	store     *flakyStore
}

// newFixture builds a Service over encrypted vault files and a migrated
// SQLite session store in a temp dir.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	cipher, err := vault.NewCipher(vault.DeriveKey(testSecret, vault.DefaultSalt))
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	users, err := user.Open(ctx, vault.NewFile[map[string]user.User](filepath.Join(dir, "users.enc"), cipher))
	if err != nil {
		t.Fatalf("user.Open() error = %v", err)
	}

	store := &flakyStore{Store: vault.NewFile[map[string]company.Company](filepath.Join(dir, "companies.enc"), cipher)}
	companies, err := company.Open(ctx, store)
	if err != nil {
		t.Fatalf("company.Open() error = %v", err)
	}

	db, err := database.Open(ctx, config.DatabaseConfig{Path: filepath.Join(dir, "sessions.db"), WALMode: true})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	tokens, err := auth.NewTokens(auth.TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}

	f := &fixture{
		users:     users,
		companies: companies,
		sessions:  auth.NewTokenRepository(db.DB),
		tokens:    tokens,
		notifier:  &fakeNotifier{},
		metrics:   &fakeMetrics{},
		store:     store,
	}

	f.svc, err = New(Deps{
		Users:     users,
		Companies: companies,
		Hasher:    auth.NewHasher(auth.Params{Time: 1, Memory: 8 * 1024}),
		Tokens:    tokens,
		Sessions:  f.sessions,
		Sender:    f.notifier,
		Events:    f.notifier,
		Metrics:   f.metrics,
		Config: Config{
			PublicURL:            "https://fleet.example.com",
			RequireVerifiedLogin: true,
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return f
}

// registerOwner registers email as owner of name and verifies the account.
func (f *fixture) registerOwner(t *testing.T, email, name string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.RegisterOwner(ctx, OwnerRegistration{
		Email:       email,
		Password:    testPassword,
		FullName:    "Owner",
		CompanyName: name,
	}); err != nil {
		t.Fatalf("RegisterOwner(%s) error = %v", email, err)
	}
	if _, err := f.svc.VerifyEmail(ctx, f.notifier.lastToken(t, email)); err != nil {
		t.Fatalf("VerifyEmail(%s) error = %v", email, err)
	}
}

// addMember registers and verifies email as actor's teammate.
func (f *fixture) addMember(t *testing.T, actor, email string, privileges ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.RegisterTeamMember(ctx, actor, MemberRegistration{
		Email:      email,
		Password:   testPassword,
		Privileges: privileges,
	}); err != nil {
		t.Fatalf("RegisterTeamMember(%s) error = %v", email, err)
	}
	if _, err := f.svc.VerifyEmail(ctx, f.notifier.lastToken(t, email)); err != nil {
		t.Fatalf("VerifyEmail(%s) error = %v", email, err)
	}
}
