package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

// Token purposes. A token minted for one purpose is rejected by the
// parser for another.
const (
	PurposeAccess       = "access"
	PurposeVerification = "verify_email"
)

// Default lifetimes.
const (
	DefaultAccessTTL       = 15 * time.Minute
	DefaultVerificationTTL = 24 * time.Hour
	DefaultRefreshTTL      = 7 * 24 * time.Hour
)

// MinSecretLength is the shortest accepted HS256 signing secret.
const MinSecretLength = 32

// issuer is the iss claim on every token.
const issuer = "fleetauth"

// CustomClaims extends JWT standard claims with FleetAuth-specific fields.
type CustomClaims struct {
	jwt.RegisteredClaims
	Purpose    string         `json:"purpose"`
	Company    string         `json:"company,omitempty"`
	Privileges []string       `json:"privileges,omitempty"`
	Role       privilege.Role `json:"role,omitempty"`
	SessionID  string         `json:"sid,omitempty"`
}

// TokenConfig configures a Tokens instance.
type TokenConfig struct {
	Secret          string
	AccessTTL       time.Duration
	VerificationTTL time.Duration
}

// Tokens signs and parses HS256 access and verification tokens.
type Tokens struct {
	secret          []byte
	accessTTL       time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewTokens validates cfg and returns a Tokens. Zero TTLs take the defaults.
func NewTokens(cfg TokenConfig) (*Tokens, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrWeakSecret, MinSecretLength)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = DefaultVerificationTTL
	}
	return &Tokens{
		secret:          []byte(cfg.Secret),
		accessTTL:       cfg.AccessTTL,
		verificationTTL: cfg.VerificationTTL,
		now:             time.Now,
	}, nil
}

// AccessTTL returns the lifetime of access tokens.
func (t *Tokens) AccessTTL() time.Duration {
	return t.accessTTL
}

// VerificationTTL returns the lifetime of verification tokens.
func (t *Tokens) VerificationTTL() time.Duration {
	return t.verificationTTL
}

// IssueAccess creates a signed access token for id. A session id is
// generated when id has none.
func (t *Tokens) IssueAccess(id Identity) (string, error) {
	sid := id.SessionID
	if sid == "" {
		sid = uuid.NewString()
	}
	claims := CustomClaims{
		RegisteredClaims: t.registered(id.Email, t.accessTTL),
		Purpose:          PurposeAccess,
		Company:          id.Company,
		Privileges:       id.Privileges.Strings(),
		Role:             id.Privileges.DashboardRole(),
		SessionID:        sid,
	}
	signed, err := t.sign(claims)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseAccess validates an access token and returns the identity it
// carries. Privileges are read leniently; the role is recomputed from them.
func (t *Tokens) ParseAccess(token string) (Identity, error) {
	claims, err := t.parse(token, PurposeAccess)
	if err != nil {
		return Identity{}, err
	}
	set := privilege.Normalize(claims.Privileges)
	return Identity{
		Email:      claims.Subject,
		Company:    claims.Company,
		Privileges: set,
		Role:       set.DashboardRole(),
		SessionID:  claims.SessionID,
	}, nil
}

// IssueVerification creates a single-purpose email verification token.
func (t *Tokens) IssueVerification(email string) (string, error) {
	claims := CustomClaims{
		RegisteredClaims: t.registered(email, t.verificationTTL),
		Purpose:          PurposeVerification,
	}
	signed, err := t.sign(claims)
	if err != nil {
		return "", fmt.Errorf("signing verification token: %w", err)
	}
	return signed, nil
}

// ParseVerification validates a verification token and returns its email.
func (t *Tokens) ParseVerification(token string) (string, error) {
	claims, err := t.parse(token, PurposeVerification)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (t *Tokens) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (t *Tokens) sign(claims CustomClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// parse checks signature, expiry, issuer and purpose.
func (t *Tokens) parse(tokenString, purpose string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongPurpose, claims.Purpose, purpose)
	}
	return claims, nil
}

// GenerateRefreshToken creates a cryptographically random refresh token (256-bit).
// The raw token is returned to the client; the hash is stored in the database.
func GenerateRefreshToken() (raw string, err error) {
	b := make([]byte, 32) //nolint:mnd // 256-bit token
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
