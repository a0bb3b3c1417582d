package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/company"
)

// auditChanSize is the buffer size for the async audit log channel.
// Entries beyond this are dropped (best-effort) to avoid back-pressure on requests.
const auditChanSize = 256

// auditLog enqueues an audit log entry for asynchronous write (best-effort).
// If the channel is full the entry is dropped and a warning is logged.
func (s *Server) auditLog(action, entityType, entityID, actor, companyName string, details map[string]any) {
	if s.auditCh == nil {
		return
	}

	entry := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Company:    companyName,
		Source:     "api",
		Details:    details,
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit log channel full, dropping entry",
			"action", action,
			"entity_type", entityType,
		)
	}
}

// drainAuditLog reads entries from the audit channel and writes them serially.
// It runs until the context is cancelled, then drains remaining entries.
func (s *Server) drainAuditLog(ctx context.Context) {
	for {
		select {
		case entry := <-s.auditCh:
			s.writeAudit(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-s.auditCh:
					s.writeAudit(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *Server) writeAudit(entry *audit.Entry) {
	if err := s.auditRepo.Create(context.Background(), entry); err != nil {
		s.logger.Error("audit log write failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"error", err,
		)
	}
}

// handleListAuditLogs returns the caller's company audit trail, most
// recent first. Only members who may manage privileges can read it.
//
// Query parameters:
//   - action: filter by action
//   - entity_type: filter by entity type (user, member, company, location, fleet_category)
//   - actor: filter by acting email
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeNotFound(w, "audit logging not configured")
		return
	}

	id := identityFrom(r.Context())
	name, err := s.team.CompanyOf(id.Email)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}
	privs, err := s.companies.PrivilegesOf(name, id.Email)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}
	if !privs.CanManagePrivileges() {
		s.writeFault(w, r, company.ErrForbidden)
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Company:    name,
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		Actor:      q.Get("actor"),
	}
	if v := q.Get("limit"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
