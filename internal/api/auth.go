package api

import (
	"net/http"

	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/team"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

// refreshRequest is the request body for /auth/refresh and /auth/logout.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceInfo   string `json:"device_info"`
}

// verifyRequest is the request body for POST /auth/verify.
type verifyRequest struct {
	Token string `json:"token"`
}

// handleRegister creates a company and its owner account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req team.OwnerRegistration
	if !decodeJSON(w, r, &req) {
		return
	}

	reg, err := s.team.RegisterOwner(r.Context(), req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionRegister, "company", reg.CompanyID, reg.User.Email, reg.Company, nil)
	writeJSON(w, http.StatusCreated, reg)
}

// handleVerify consumes a verification token from ?token= or the JSON body.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method == http.MethodPost {
		var req verifyRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		token = req.Token
	}
	if token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	profile, err := s.team.VerifyEmail(r.Context(), token)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionVerify, "user", profile.Email, profile.Email, profile.CompanyName, nil)
	writeJSON(w, http.StatusOK, profile)
}

// handleLogin authenticates a user and opens a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}
	if req.DeviceInfo == "" {
		req.DeviceInfo = r.UserAgent()
	}

	sess, err := s.team.Login(r.Context(), req.Email, req.Password, req.DeviceInfo)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionLogin, "user", sess.Identity.Email, sess.Identity.Email, sess.Identity.Company,
		map[string]any{"client": clientAddr(r), "session": sess.Identity.SessionID})
	writeJSON(w, http.StatusOK, sess)
}

// handleRefresh rotates a refresh token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	sess, err := s.team.Refresh(r.Context(), req.RefreshToken, req.DeviceInfo)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// handleLogout revokes the session the refresh token belongs to.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	if err := s.team.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeFault(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleLogoutAll revokes every session of the caller.
func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if err := s.team.LogoutAll(r.Context(), id.Email); err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionLogout, "user", id.Email, id.Email, id.Company, map[string]any{"all_sessions": true})
	w.WriteHeader(http.StatusNoContent)
}

// handleListSessions returns the caller's live sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	sessions, err := s.team.Sessions(r.Context(), id.Email)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// handleMe returns the caller's profile, privileges and capabilities.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me, err := s.team.Me(r.Context(), identityFrom(r.Context()).Email)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, me)
}
