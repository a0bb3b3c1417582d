package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/database"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/ratelimit"
	"github.com/nerrad567/fleetauth-core/internal/team"
	"github.com/nerrad567/fleetauth-core/internal/user"
	"github.com/nerrad567/fleetauth-core/migrations"
)

const (
	testSecret   = "test-secret-key-at-least-32-characters-long"
	testPassword = "correct-horse-battery"
)

// captureSender keeps the latest verification token per email.
type captureSender struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (c *captureSender) SendVerification(_ context.Context, v notify.Verification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil {
		c.tokens = make(map[string]string)
	}
	c.tokens[v.Email] = v.Token
	return nil
}

func (c *captureSender) token(t *testing.T, email string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[email]
	if !ok {
		t.Fatalf("no verification token for %s", email)
	}
	return tok
}

type testEnv struct {
	srv    *Server
	router http.Handler
	sender *captureSender
}

type serverOption func(*Deps)

func withLimiter(l *ratelimit.Limiter) serverOption {
	return func(d *Deps) { d.Limiter = l }
}

func withChecks(checks map[string]HealthChecker) serverOption {
	return func(d *Deps) { d.Checks = checks }
}

// testServer wires the full stack over temp vault files and a migrated
// temp SQLite database.
func testServer(t *testing.T, opts ...serverOption) *testEnv {
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
	companies, err := company.Open(ctx, vault.NewFile[map[string]company.Company](filepath.Join(dir, "companies.enc"), cipher))
	if err != nil {
		t.Fatalf("company.Open() error = %v", err)
	}

	db, err := database.Open(ctx, config.DatabaseConfig{Path: filepath.Join(dir, "fleetauth.db"), WALMode: true})
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

	sender := &captureSender{}
	svc, err := team.New(team.Deps{
		Users:     users,
		Companies: companies,
		Hasher:    auth.NewHasher(auth.Params{Time: 1, Memory: 8 * 1024}),
		Tokens:    tokens,
		Sessions:  auth.NewTokenRepository(db.DB),
		Sender:    sender,
		Config:    team.Config{PublicURL: "http://localhost", RequireVerifiedLogin: true},
	})
	if err != nil {
		t.Fatalf("team.New() error = %v", err)
	}

	deps := Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		Logger:    logging.Nop(),
		Team:      svc,
		Users:     users,
		Companies: companies,
		Tokens:    tokens,
		Audit:     audit.NewSQLiteRepository(db.DB),
		Version:   "test",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testEnv{srv: srv, router: srv.buildRouter(), sender: sender}
}

// do sends a request with an optional bearer token and JSON body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// expect fails unless w has the wanted status.
func expect(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

// registerOwner registers and verifies an owner and returns an access token.
func (e *testEnv) registerOwner(t *testing.T, email, companyName string) string {
	t.Helper()
	expect(t, e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":        email,
		"password":     testPassword,
		"full_name":    "Owner",
		"company_name": companyName,
	}), http.StatusCreated)
	return e.verifyAndLogin(t, email)
}

// addMember registers and verifies a teammate and returns their access token.
func (e *testEnv) addMember(t *testing.T, ownerToken, email string, privileges ...string) string {
	t.Helper()
	expect(t, e.do(t, http.MethodPost, "/api/v1/team/members", ownerToken, map[string]any{
		"email":      email,
		"password":   testPassword,
		"privileges": privileges,
	}), http.StatusCreated)
	return e.verifyAndLogin(t, email)
}

func (e *testEnv) verifyAndLogin(t *testing.T, email string) string {
	t.Helper()
	expect(t, e.do(t, http.MethodGet, "/api/v1/auth/verify?token="+e.sender.token(t, email), "", nil), http.StatusOK)
	return e.login(t, email).AccessToken
}

func (e *testEnv) login(t *testing.T, email string) team.Session {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	expect(t, w, http.StatusOK)
	return decode[team.Session](t, w)
}

// flushAudit writes every queued audit entry.
func (e *testEnv) flushAudit() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.srv.drainAuditLog(ctx)
}
