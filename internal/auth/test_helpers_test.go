package auth

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

// testDB creates a temporary SQLite database with the refresh token schema.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// A file so WAL mode works (in-memory doesn't support it).
	dbPath := filepath.Join(t.TempDir(), "auth-test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE refresh_tokens (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			family_id TEXT NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			device_info TEXT,
			expires_at TEXT NOT NULL,
			revoked INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_refresh_tokens_email ON refresh_tokens(email);
		CREATE INDEX idx_refresh_tokens_family ON refresh_tokens(family_id);
		CREATE INDEX idx_refresh_tokens_expires ON refresh_tokens(expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying refresh token schema: %v", err)
	}

	return db
}

// seedToken stores a live token for email with the given raw value.
func seedToken(t *testing.T, repo *SQLiteTokenRepository, email, raw string, ttl time.Duration) *RefreshToken {
	t.Helper()

	tk := &RefreshToken{
		Email:     email,
		TokenHash: HashToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := repo.Create(t.Context(), tk); err != nil {
		t.Fatalf("creating token %q: %v", raw, err)
	}
	return tk
}

// testTokens returns a Tokens whose clock can be moved by the caller.
func testTokens(t *testing.T, now *time.Time) *Tokens {
	t.Helper()

	tk, err := NewTokens(TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}
	if now != nil {
		tk.now = func() time.Time { return *now }
	}
	return tk
}

// fastHasher keeps argon2 cheap in tests.
func fastHasher() *Hasher {
	return NewHasher(Params{Time: 1, Memory: 8 * 1024})
}

func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
