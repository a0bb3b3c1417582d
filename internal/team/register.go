package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/privilege"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// RegisterOwner creates an unverified account and a new company owned by
// it. Fails with Conflict when the company or the email already exists.
// If the company cannot be created the account is removed again.
func (s *Service) RegisterOwner(ctx context.Context, in OwnerRegistration) (reg Registration, err error) {
	defer func() { s.metrics.RecordAuthEvent(eventRegister, outcome(err)) }()

	email := user.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.CompanyName)

	if err := user.ValidateEmail(email); err != nil {
		return Registration{}, err
	}
	if err := company.ValidateName(name); err != nil {
		return Registration{}, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return Registration{}, err
	}

	if s.companies.Exists(name) {
		return Registration{}, fmt.Errorf("%w: %q", company.ErrCompanyExists, name)
	}
	if s.users.Exists(email) {
		return Registration{}, fmt.Errorf("%w: %s", user.ErrUserExists, email)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Registration{}, fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     in.FullName,
		CompanyName:  name,
	})
	if err != nil {
		return Registration{}, err
	}

	c, err := s.companies.Create(ctx, name, email)
	if err != nil {
		s.undoUser(ctx, email, err)
		return Registration{}, err
	}

	s.sendVerification(ctx, u)
	s.logger.Info("owner registered", "email", email, "company", name)

	return Registration{
		User:       u.Profile(),
		Company:    c.Name,
		CompanyID:  c.UUID,
		Privileges: c.Members[email].Set().Strings(),
	}, nil
}

// RegisterTeamMember creates an unverified account for a new teammate of
// the actor. The actor must belong to a company and be allowed to add
// members; privileges are validated strictly before anything is created.
func (s *Service) RegisterTeamMember(ctx context.Context, actor string, in MemberRegistration) (view MemberView, err error) {
	defer func() { s.metrics.RecordAuthEvent(eventRegister, outcome(err)) }()

	actorUser, name, err := s.actorCompany(actor)
	if err != nil {
		return MemberView{}, err
	}

	privs, err := s.companies.PrivilegesOf(name, actorUser.Email)
	if err != nil {
		return MemberView{}, err
	}
	if !privs.CanAddMembers() {
		s.logger.Warn("authorization denied", "company", name, "actor", actorUser.Email, "operation", "register members")
		return MemberView{}, fmt.Errorf("%w: %s may not add members", company.ErrForbidden, actorUser.Email)
	}

	set, err := privilege.Parse(in.Privileges)
	if err != nil {
		return MemberView{}, err
	}
	if set.IsOwner() {
		return MemberView{}, company.ErrOwnerGrant
	}

	email := user.NormalizeEmail(in.Email)
	if err := user.ValidateEmail(email); err != nil {
		return MemberView{}, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return MemberView{}, err
	}
	if s.users.Exists(email) {
		return MemberView{}, fmt.Errorf("%w: %s", user.ErrUserExists, email)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return MemberView{}, fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     in.FullName,
		CompanyName:  name,
	})
	if err != nil {
		return MemberView{}, err
	}

	entry, err := s.companies.AddMember(ctx, name, actorUser.Email, email, set.Strings())
	if err != nil {
		s.undoUser(ctx, email, err)
		return MemberView{}, err
	}

	s.sendVerification(ctx, u)
	s.announce(ctx, notify.TeamEvent{
		Type:       notify.EventMemberAdded,
		Company:    name,
		Actor:      actorUser.Email,
		Member:     email,
		Privileges: entry.Privileges,
	})
	s.logger.Info("team member registered", "company", name, "actor", actorUser.Email, "email", email)

	return s.memberView(entry), nil
}

// VerifyEmail consumes a verification token. A bad or expired token is
// Unauthenticated; a second verification of the same account is Conflict.
func (s *Service) VerifyEmail(ctx context.Context, token string) (profile user.Profile, err error) {
	defer func() { s.metrics.RecordAuthEvent(eventVerify, outcome(err)) }()

	email, err := s.tokens.ParseVerification(token)
	if err != nil {
		return user.Profile{}, err
	}

	u, err := s.users.MarkVerified(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyVerified) {
			s.logger.Debug("verification repeated", "email", email)
		}
		return user.Profile{}, err
	}

	return u.Profile(), nil
}

// undoUser removes an account created earlier in a failed registration.
func (s *Service) undoUser(ctx context.Context, email string, cause error) {
	s.logger.Warn("registration failed, removing account", "email", email, "error", cause)
	if err := s.users.Delete(ctx, email); err != nil {
		s.logger.Error("removing account after failed registration", "email", email, "error", err)
	}
}
