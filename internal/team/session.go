package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/privilege"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// Login checks credentials and opens a new session family. Unknown
// accounts and wrong passwords both return auth.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password, deviceInfo string) (sess Session, err error) {
	defer func() { s.metrics.RecordAuthEvent(eventLogin, outcome(err)) }()

	email = user.NormalizeEmail(email)

	u, err := s.users.Get(email)
	if err != nil {
		s.logger.Info("login failed", "email", email, "reason", "unknown account")
		return Session{}, auth.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		s.logger.Error("verifying password hash", "email", email, "error", err)
		return Session{}, auth.ErrInvalidCredentials
	}
	if !ok {
		s.logger.Info("login failed", "email", email, "reason", "wrong password")
		return Session{}, auth.ErrInvalidCredentials
	}

	if s.cfg.RequireVerifiedLogin && !u.Verified {
		return Session{}, fmt.Errorf("%w: %s", ErrNotVerified, email)
	}

	raw, err := auth.GenerateRefreshToken()
	if err != nil {
		return Session{}, err
	}
	tok := &auth.RefreshToken{
		Email:      email,
		TokenHash:  auth.HashToken(raw),
		DeviceInfo: deviceInfo,
		ExpiresAt:  s.now().Add(s.cfg.RefreshTTL).UTC(),
	}
	if err := s.sessions.Create(ctx, tok); err != nil {
		return Session{}, err
	}

	sess, err = s.session(u, tok.FamilyID, raw)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("login succeeded", "email", email, "company", sess.Identity.Company, "session", tok.FamilyID)
	s.announceAuth(ctx, notify.AuthEvent{
		Type:    notify.AuthLogin,
		Email:   email,
		Company: sess.Identity.Company,
		Session: tok.FamilyID,
	})
	return sess, nil
}

// Refresh rotates a refresh token. Presenting a token that was already
// rotated or revoked is treated as theft: the whole family is revoked and
// auth.ErrTokenReuse returned.
func (s *Service) Refresh(ctx context.Context, raw, deviceInfo string) (sess Session, err error) {
	defer func() { s.metrics.RecordAuthEvent(eventRefresh, outcome(err)) }()

	tok, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(raw))
	if err != nil {
		return Session{}, err
	}

	if tok.Revoked {
		return Session{}, s.reuseDetected(ctx, tok)
	}
	if tok.Expired(s.now()) {
		return Session{}, auth.ErrTokenExpired
	}

	u, err := s.users.Get(tok.Email)
	if err != nil {
		s.revokeFamily(ctx, tok.FamilyID)
		return Session{}, fmt.Errorf("%w: account no longer exists", auth.ErrTokenInvalid)
	}

	if deviceInfo == "" {
		deviceInfo = tok.DeviceInfo
	}
	newRaw, err := auth.GenerateRefreshToken()
	if err != nil {
		return Session{}, err
	}
	next := &auth.RefreshToken{
		Email:      tok.Email,
		FamilyID:   tok.FamilyID,
		TokenHash:  auth.HashToken(newRaw),
		DeviceInfo: deviceInfo,
		ExpiresAt:  s.now().Add(s.cfg.RefreshTTL).UTC(),
	}

	if err := s.sessions.RotateRefreshToken(ctx, tok.ID, next); err != nil {
		if errors.Is(err, auth.ErrTokenRevoked) {
			// Lost a race against another rotation of the same token.
			return Session{}, s.reuseDetected(ctx, tok)
		}
		return Session{}, err
	}

	return s.session(u, tok.FamilyID, newRaw)
}

// Logout ends the session family the refresh token belongs to. Logging
// out an already revoked session succeeds.
func (s *Service) Logout(ctx context.Context, raw string) (err error) {
	defer func() { s.metrics.RecordAuthEvent(eventLogout, outcome(err)) }()

	tok, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(raw))
	if err != nil {
		return err
	}
	if err := s.sessions.RevokeFamily(ctx, tok.FamilyID); err != nil {
		return err
	}

	s.logger.Info("logout", "email", tok.Email, "session", tok.FamilyID)
	s.announceAuth(ctx, notify.AuthEvent{Type: notify.AuthLogout, Email: tok.Email, Session: tok.FamilyID})
	return nil
}

// LogoutAll revokes every session of the account.
func (s *Service) LogoutAll(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.RecordAuthEvent(eventLogout, outcome(err)) }()

	email = user.NormalizeEmail(email)
	if err := s.sessions.RevokeAllForEmail(ctx, email); err != nil {
		return err
	}

	s.logger.Info("all sessions revoked", "email", email)
	s.announceAuth(ctx, notify.AuthEvent{Type: notify.AuthLogoutAll, Email: email})
	return nil
}

// Sessions lists the account's live refresh tokens, newest first.
func (s *Service) Sessions(ctx context.Context, email string) ([]auth.RefreshToken, error) {
	return s.sessions.ListActiveByEmail(ctx, user.NormalizeEmail(email))
}

// Me returns the caller's profile, privileges and capabilities.
func (s *Service) Me(_ context.Context, email string) (Me, error) {
	u, err := s.users.Get(email)
	if err != nil {
		return Me{}, err
	}

	id := s.identity(u, "")
	return Me{
		User:         u.Profile(),
		Company:      id.Company,
		Privileges:   id.Privileges.Strings(),
		Capabilities: id.Privileges.Capabilities(),
	}, nil
}

// identity resolves what an access token should assert about u right now.
// Removed members carry no company and the default privilege set.
func (s *Service) identity(u user.User, sessionID string) auth.Identity {
	id := auth.Identity{
		Email:      u.Email,
		Privileges: privilege.Normalize(nil),
		SessionID:  sessionID,
	}
	if u.CompanyName != "" && s.companies.IsMember(u.CompanyName, u.Email) {
		if set, err := s.companies.PrivilegesOf(u.CompanyName, u.Email); err == nil {
			id.Company = u.CompanyName
			id.Privileges = set
		}
	}
	id.Role = id.Privileges.DashboardRole()
	return id
}

func (s *Service) session(u user.User, familyID, refresh string) (Session, error) {
	id := s.identity(u, familyID)
	access, err := s.tokens.IssueAccess(id)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		Identity:     id,
	}, nil
}

func (s *Service) reuseDetected(ctx context.Context, tok *auth.RefreshToken) error {
	s.logger.Warn("refresh token reuse detected, revoking session family",
		"email", tok.Email, "session", tok.FamilyID)
	s.revokeFamily(ctx, tok.FamilyID)
	s.announceAuth(ctx, notify.AuthEvent{Type: notify.AuthTokenReuse, Email: tok.Email, Session: tok.FamilyID})
	return auth.ErrTokenReuse
}

func (s *Service) revokeFamily(ctx context.Context, familyID string) {
	if err := s.sessions.RevokeFamily(ctx, familyID); err != nil {
		s.logger.Error("revoking session family", "session", familyID, "error", err)
	}
}
