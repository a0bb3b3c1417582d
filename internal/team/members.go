package team

import (
	"context"

	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// ListTeamMembers returns the actor's company members, oldest first. The
// actor must still be a member.
func (s *Service) ListTeamMembers(_ context.Context, actor string) ([]MemberView, error) {
	name, err := s.CompanyOf(actor)
	if err != nil {
		return nil, err
	}

	entries, err := s.companies.Members(name)
	if err != nil {
		return nil, err
	}

	views := make([]MemberView, 0, len(entries))
	for _, e := range entries {
		views = append(views, s.memberView(e))
	}
	return views, nil
}

// RemoveTeamMember removes email from the actor's company and ends the
// removed member's sessions. The account itself is kept.
func (s *Service) RemoveTeamMember(ctx context.Context, actor, email string) error {
	actorUser, name, err := s.actorCompany(actor)
	if err != nil {
		return err
	}
	email = user.NormalizeEmail(email)

	if err := s.companies.RemoveMember(ctx, name, actorUser.Email, email); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForEmail(ctx, email); err != nil {
		s.logger.Warn("revoking sessions of removed member", "email", email, "error", err)
	}

	s.announce(ctx, notify.TeamEvent{
		Type:    notify.EventMemberRemoved,
		Company: name,
		Actor:   actorUser.Email,
		Member:  email,
	})
	s.logger.Info("team member removed", "company", name, "actor", actorUser.Email, "email", email)
	return nil
}

// UpdateMemberPrivileges replaces a teammate's privileges. Authorization
// and owner protection are enforced by the registry.
func (s *Service) UpdateMemberPrivileges(ctx context.Context, actor, email string, privileges []string) (MemberView, error) {
	actorUser, name, err := s.actorCompany(actor)
	if err != nil {
		return MemberView{}, err
	}

	entry, err := s.companies.UpdateMemberPrivileges(ctx, name, actorUser.Email, email, privileges)
	if err != nil {
		return MemberView{}, err
	}

	s.announce(ctx, notify.TeamEvent{
		Type:       notify.EventPrivilegesUpdated,
		Company:    name,
		Actor:      actorUser.Email,
		Member:     entry.Email,
		Privileges: entry.Privileges,
	})
	s.logger.Info("member privileges updated", "company", name, "actor", actorUser.Email,
		"email", entry.Email, "privileges", entry.Privileges)

	return s.memberView(entry), nil
}
