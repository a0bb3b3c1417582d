package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/team"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// updateMemberRequest is the request body for PATCH /team/members/{email}.
type updateMemberRequest struct {
	Privileges []string `json:"privileges"`
}

// handleListMembers returns the caller's company members.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	members, err := s.team.ListTeamMembers(r.Context(), id.Email)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"members": members,
		"count":   len(members),
	})
}

// handleRegisterMember creates an account for a new teammate.
func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req team.MemberRegistration
	if !decodeJSON(w, r, &req) {
		return
	}

	id := identityFrom(r.Context())
	view, err := s.team.RegisterTeamMember(r.Context(), id.Email, req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionMemberAdded, "member", view.Email, id.Email, s.companyName(id.Email),
		map[string]any{"privileges": view.Privileges})
	writeJSON(w, http.StatusCreated, view)
}

// handleUpdateMember replaces a teammate's privileges.
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := identityFrom(r.Context())
	email := user.NormalizeEmail(chi.URLParam(r, "email"))
	view, err := s.team.UpdateMemberPrivileges(r.Context(), id.Email, email, req.Privileges)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionPrivilegesUpdated, "member", view.Email, id.Email, s.companyName(id.Email),
		map[string]any{"privileges": view.Privileges})
	writeJSON(w, http.StatusOK, view)
}

// handleRemoveMember removes a teammate from the caller's company.
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	email := user.NormalizeEmail(chi.URLParam(r, "email"))

	if err := s.team.RemoveTeamMember(r.Context(), id.Email, email); err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionMemberRemoved, "member", email, id.Email, s.companyName(id.Email), nil)
	w.WriteHeader(http.StatusNoContent)
}

// companyName is the caller's current company for audit records, or "".
func (s *Server) companyName(email string) string {
	name, err := s.team.CompanyOf(email)
	if err != nil {
		return ""
	}
	return name
}
