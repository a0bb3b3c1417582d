package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/fleetauth-core/internal/fault"
)

// TokenRepository defines the interface for refresh token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetByID(ctx context.Context, id string) (*RefreshToken, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeFamily(ctx context.Context, familyID string) error
	RevokeAllForEmail(ctx context.Context, email string) error
	RotateRefreshToken(ctx context.Context, oldID string, newToken *RefreshToken) error
	ListActiveByEmail(ctx context.Context, email string) ([]RefreshToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// SQLiteTokenRepository implements TokenRepository using SQLite.
type SQLiteTokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new SQLite-backed token repository.
func NewTokenRepository(db *sql.DB) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db}
}

// HashToken computes the SHA-256 hash of a raw token string for storage.
// Raw tokens are never stored, only their hashes.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

const tokenColumns = `id, email, family_id, token_hash, device_info, expires_at, revoked, created_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts a new refresh token. ID and FamilyID are generated if empty.
func (r *SQLiteTokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	if err := insertToken(ctx, r.db, token); err != nil {
		return fmt.Errorf("%w: creating refresh token: %w", fault.ErrStorage, err)
	}
	return nil
}

func insertToken(ctx context.Context, db execer, token *RefreshToken) error {
	if token.ID == "" {
		token.ID = "rt-" + uuid.NewString()[:16]
	}
	if token.FamilyID == "" {
		token.FamilyID = uuid.NewString()
	}

	now := time.Now().UTC().Truncate(time.Second)
	token.CreatedAt = now

	_, err := db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (`+tokenColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.Email, token.FamilyID, token.TokenHash,
		nullString(token.DeviceInfo),
		token.ExpiresAt.UTC().Format(time.RFC3339),
		boolToInt(token.Revoked), now.Format(time.RFC3339),
	)
	return err
}

// GetByID retrieves a refresh token by its ID.
func (r *SQLiteTokenRepository) GetByID(ctx context.Context, id string) (*RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE id = ?`, id)
	return scanToken(row)
}

// GetByTokenHash retrieves a refresh token by its SHA-256 hash.
// Used during refresh and logout when the client sends the raw token.
func (r *SQLiteTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, tokenHash)
	return scanToken(row)
}

// Revoke marks a single refresh token as revoked.
func (r *SQLiteTokenRepository) Revoke(ctx context.Context, id string) error {
	return r.revokeWhere(ctx, "id", id)
}

// RevokeFamily marks all tokens in a family as revoked. A reused token
// invalidates its whole family.
func (r *SQLiteTokenRepository) RevokeFamily(ctx context.Context, familyID string) error {
	return r.revokeWhere(ctx, "family_id", familyID)
}

// RevokeAllForEmail marks all refresh tokens for an account as revoked.
func (r *SQLiteTokenRepository) RevokeAllForEmail(ctx context.Context, email string) error {
	return r.revokeWhere(ctx, "email", email)
}

// revokeWhere is only called with fixed column names.
func (r *SQLiteTokenRepository) revokeWhere(ctx context.Context, column, value string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked = 1 WHERE "+column+" = ?", value) //nolint:gosec // column is a constant
	if err != nil {
		return fmt.Errorf("%w: revoking tokens by %s: %w", fault.ErrStorage, column, err)
	}
	return nil
}

// RotateRefreshToken atomically revokes the old token and creates a new one
// in the same family. The old token must still be live, so of two
// concurrent rotations of one token only the first succeeds.
func (r *SQLiteTokenRepository) RotateRefreshToken(ctx context.Context, oldID string, newToken *RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning rotation transaction: %w", fault.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked = 1 WHERE id = ? AND revoked = 0", oldID)
	if err != nil {
		return fmt.Errorf("%w: revoking old token: %w", fault.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // always succeeds on SQLite
		return ErrTokenRevoked
	}

	if err := insertToken(ctx, tx, newToken); err != nil {
		return fmt.Errorf("%w: creating new token: %w", fault.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing rotation: %w", fault.ErrStorage, err)
	}
	return nil
}

// ListActiveByEmail returns all non-revoked, non-expired tokens for an account.
func (r *SQLiteTokenRepository) ListActiveByEmail(ctx context.Context, email string) ([]RefreshToken, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens
		 WHERE email = ? AND revoked = 0 AND expires_at > ?
		 ORDER BY created_at DESC`, email, now)
	if err != nil {
		return nil, fmt.Errorf("%w: listing active tokens: %w", fault.ErrStorage, err)
	}
	defer rows.Close()

	tokens := []RefreshToken{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tokens: %w", fault.ErrStorage, err)
	}
	return tokens, nil
}

// DeleteExpired removes tokens that have expired and returns the count.
func (r *SQLiteTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting expired tokens: %w", fault.ErrStorage, err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(s scanner) (*RefreshToken, error) {
	var t RefreshToken
	var deviceInfo sql.NullString
	var revoked int
	var expiresAt, createdAt string

	err := s.Scan(&t.ID, &t.Email, &t.FamilyID, &t.TokenHash, &deviceInfo,
		&expiresAt, &revoked, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: reading refresh token: %w", fault.ErrStorage, err)
	}

	t.Revoked = revoked != 0
	if deviceInfo.Valid {
		t.DeviceInfo = deviceInfo.String
	}
	t.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // format is controlled
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
