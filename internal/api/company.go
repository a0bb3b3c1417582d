package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/company"
)

// Sub-records under /company/locations/{ref} and /company/fleet-categories/{ref}
// are addressed by list position when ref is a non-negative integer and by
// uuid otherwise. Positions shift after a removal; uuids do not.

// callerCompany resolves the caller's current company or writes the error.
func (s *Server) callerCompany(w http.ResponseWriter, r *http.Request) (actor, name string, ok bool) {
	actor = identityFrom(r.Context()).Email
	name, err := s.team.CompanyOf(actor)
	if err != nil {
		s.writeFault(w, r, err)
		return "", "", false
	}
	return actor, name, true
}

// refIndex reports whether ref addresses a list position.
func refIndex(ref string) (int, bool) {
	n, err := strconv.Atoi(ref)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	_, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	c, err := s.companies.Get(name)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":        c.Name,
		"uuid":        c.UUID,
		"owner_email": c.OwnerEmail,
		"created_at":  c.CreatedAt,
		"profile":     c.Profile,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	var req company.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := s.companies.UpdateProfile(r.Context(), name, actor, req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionProfileUpdated, "company", name, actor, name, nil)
	writeJSON(w, http.StatusOK, profile)
}

// ─── Locations ────────────────────────────────────────────────────

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	_, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	locations, err := s.companies.Locations(name)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"locations": locations,
		"count":     len(locations),
	})
}

func (s *Server) handleAddLocation(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	var req company.LocationInput
	if !decodeJSON(w, r, &req) {
		return
	}

	loc, err := s.companies.AddLocation(r.Context(), name, actor, req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionLocationAdded, "location", loc.ID, actor, name, map[string]any{"name": loc.Name})
	writeJSON(w, http.StatusCreated, loc)
}

func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	var req company.LocationInput
	if !decodeJSON(w, r, &req) {
		return
	}

	loc, err := s.updateLocation(r.Context(), name, actor, chi.URLParam(r, "ref"), req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionLocationUpdated, "location", loc.ID, actor, name, map[string]any{"name": loc.Name})
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleRemoveLocation(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	loc, err := s.removeLocation(r.Context(), name, actor, chi.URLParam(r, "ref"))
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionLocationRemoved, "location", loc.ID, actor, name, map[string]any{"name": loc.Name})
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) updateLocation(ctx context.Context, name, actor, ref string, in company.LocationInput) (company.Location, error) {
	if i, ok := refIndex(ref); ok {
		return s.companies.UpdateLocation(ctx, name, actor, i, in)
	}
	return s.companies.UpdateLocationByID(ctx, name, actor, ref, in)
}

func (s *Server) removeLocation(ctx context.Context, name, actor, ref string) (company.Location, error) {
	if i, ok := refIndex(ref); ok {
		return s.companies.RemoveLocation(ctx, name, actor, i)
	}
	return s.companies.RemoveLocationByID(ctx, name, actor, ref)
}

// ─── Fleet categories ─────────────────────────────────────────────

func (s *Server) handleListFleetCategories(w http.ResponseWriter, r *http.Request) {
	_, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	categories, err := s.companies.FleetCategories(name)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fleet_categories": categories,
		"count":            len(categories),
	})
}

func (s *Server) handleAddFleetCategory(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	var req company.FleetCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	fc, err := s.companies.AddFleetCategory(r.Context(), name, actor, req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionFleetAdded, "fleet_category", fc.ID, actor, name, map[string]any{"name": fc.Name})
	writeJSON(w, http.StatusCreated, fc)
}

func (s *Server) handleUpdateFleetCategory(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	var req company.FleetCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	fc, err := s.updateFleetCategory(r.Context(), name, actor, chi.URLParam(r, "ref"), req)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionFleetUpdated, "fleet_category", fc.ID, actor, name, map[string]any{"name": fc.Name})
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleRemoveFleetCategory(w http.ResponseWriter, r *http.Request) {
	actor, name, ok := s.callerCompany(w, r)
	if !ok {
		return
	}

	fc, err := s.removeFleetCategory(r.Context(), name, actor, chi.URLParam(r, "ref"))
	if err != nil {
		s.writeFault(w, r, err)
		return
	}

	s.auditLog(audit.ActionFleetRemoved, "fleet_category", fc.ID, actor, name, map[string]any{"name": fc.Name})
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) updateFleetCategory(ctx context.Context, name, actor, ref string, in company.FleetCategoryInput) (company.FleetCategory, error) {
	if i, ok := refIndex(ref); ok {
		return s.companies.UpdateFleetCategory(ctx, name, actor, i, in)
	}
	return s.companies.UpdateFleetCategoryByID(ctx, name, actor, ref, in)
}

func (s *Server) removeFleetCategory(ctx context.Context, name, actor, ref string) (company.FleetCategory, error) {
	if i, ok := refIndex(ref); ok {
		return s.companies.RemoveFleetCategory(ctx, name, actor, i)
	}
	return s.companies.RemoveFleetCategoryByID(ctx, name, actor, ref)
}
