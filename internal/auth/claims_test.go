package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/fault"
	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

func TestNewTokens_RejectsShortSecret(t *testing.T) {
	_, err := NewTokens(TokenConfig{Secret: "too-short"})
	if !errors.Is(err, ErrWeakSecret) {
		t.Errorf("NewTokens() error = %v, want ErrWeakSecret", err)
	}
}

func TestIssueAndParseAccess(t *testing.T) {
	tk := testTokens(t, nil)

	token, err := tk.IssueAccess(Identity{
		Email:      "bob@x.com",
		Company:    "Acme",
		Privileges: privilege.Of(privilege.Dispatcher, privilege.Viewer),
	})
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccess() returned empty token")
	}

	id, err := tk.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess() error = %v", err)
	}
	if id.Email != "bob@x.com" {
		t.Errorf("Email = %q, want %q", id.Email, "bob@x.com")
	}
	if id.Company != "Acme" {
		t.Errorf("Company = %q, want %q", id.Company, "Acme")
	}
	if id.Privileges != privilege.Of(privilege.Dispatcher, privilege.Viewer) {
		t.Errorf("Privileges = %v", id.Privileges)
	}
	if id.Role != privilege.RoleDispatcher {
		t.Errorf("Role = %q, want %q", id.Role, privilege.RoleDispatcher)
	}
	if id.SessionID == "" {
		t.Error("SessionID should not be empty")
	}
}

func TestParseAccess_Failures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := testTokens(t, &now)

	valid, err := tk.IssueAccess(Identity{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	verification, err := tk.IssueVerification("bob@x.com")
	if err != nil {
		t.Fatalf("IssueVerification() error = %v", err)
	}
	other, err := NewTokens(TokenConfig{Secret: testSecret + "-other"})
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}
	foreign, err := other.IssueAccess(Identity{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrTokenInvalid},
		{"garbage", "not-a-valid-jwt", ErrTokenInvalid},
		{"malformed", "abc.def", ErrTokenInvalid},
		{"tampered signature", tamper(valid), ErrTokenInvalid},
		{"wrong secret", foreign, ErrTokenInvalid},
		{"wrong purpose", verification, ErrWrongPurpose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tk.ParseAccess(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseAccess() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, fault.ErrUnauthenticated) {
				t.Errorf("ParseAccess() error = %v, want Unauthenticated kind", err)
			}
		})
	}
}

func TestParseAccess_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := testTokens(t, &now)

	token, err := tk.IssueAccess(Identity{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	now = now.Add(DefaultAccessTTL + time.Minute)
	if _, err := tk.ParseAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ParseAccess() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerificationToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := testTokens(t, &now)

	token, err := tk.IssueVerification("carol@x.com")
	if err != nil {
		t.Fatalf("IssueVerification() error = %v", err)
	}

	email, err := tk.ParseVerification(token)
	if err != nil {
		t.Fatalf("ParseVerification() error = %v", err)
	}
	if email != "carol@x.com" {
		t.Errorf("email = %q, want %q", email, "carol@x.com")
	}

	access, _ := tk.IssueAccess(Identity{Email: "carol@x.com"})
	if _, err := tk.ParseVerification(access); !errors.Is(err, ErrWrongPurpose) {
		t.Errorf("ParseVerification(access) error = %v, want ErrWrongPurpose", err)
	}

	now = now.Add(DefaultVerificationTTL + time.Second)
	if _, err := tk.ParseVerification(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ParseVerification() after TTL error = %v, want ErrTokenExpired", err)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	raw, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if len(raw) != 64 { //nolint:mnd // 32 bytes hex
		t.Errorf("len = %d, want 64", len(raw))
	}

	raw2, _ := GenerateRefreshToken()
	if raw == raw2 {
		t.Error("two refresh tokens should be unique")
	}
}

func TestIssueAccess_DefaultTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := testTokens(t, &now)

	if tk.AccessTTL() != DefaultAccessTTL {
		t.Errorf("AccessTTL() = %v, want %v", tk.AccessTTL(), DefaultAccessTTL)
	}

	token, _ := tk.IssueAccess(Identity{Email: "bob@x.com"})
	claims, err := tk.parse(token, PurposeAccess)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	if got := claims.ExpiresAt.Time.Sub(now); got != DefaultAccessTTL {
		t.Errorf("lifetime = %v, want %v", got, DefaultAccessTTL)
	}
}
