/*
admin.go - Operator dashboard endpoints

PURPOSE:
  Aggregate numbers, the user roster, per-user record drill-down, the
  admin flag toggle, and the compliance snapshot overview. Everything
  here sits behind requireAdmin.
*/
package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/fairhaven/cetrack/ce"
)

// newUserWindowDays is how far back the dashboard's "new users" number
// looks.
const newUserWindowDays = 30

// AdminStats returns the dashboard headline numbers plus user activity.
// GET /api/admin/stats
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	overview, err := h.Store.AdminOverview(ctx, now.AddDays(-newUserWindowDays))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load stats", err)
		return
	}
	activity, err := h.Store.UserActivityReport(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user activity", err)
		return
	}

	totalHours := ce.Hours(0)
	users := make([]UserActivityDTO, 0, len(activity))
	var top []UserActivityDTO
	for _, a := range activity {
		totalHours = totalHours.Add(a.TotalHours)
		dto := UserActivityDTO{
			User:             toUserDTO(a.User),
			RecordCount:      a.RecordCount,
			TotalHours:       a.TotalHours.Float64(),
			DesignationCount: a.DesignationCount,
		}
		users = append(users, dto)
		// Top list only shows users who have actually logged something.
		if len(top) < 5 && a.RecordCount > 0 {
			top = append(top, dto)
		}
	}

	writeJSON(w, http.StatusOK, AdminStatsResponse{
		TotalUsers:   overview.TotalUsers,
		TotalRecords: overview.TotalRecords,
		TotalHours:   totalHours.Float64(),
		NewUsers:     overview.NewUsers,
		TopUsers:     top,
		Users:        users,
	})
}

// AdminListUsers returns every account.
// GET /api/admin/users
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load users", err)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AdminUserRecords returns one user's CE history.
// GET /api/admin/users/{id}/records
func (h *Handler) AdminUserRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ce.UserID(chi.URLParam(r, "id"))

	target, err := h.Store.UserByID(ctx, id)
	if err != nil {
		writeDomainError(w, "User not found.", err)
		return
	}
	records, err := h.Store.RecordsByUser(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	total := ce.Hours(0)
	for _, rec := range records {
		total = total.Add(rec.Hours)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":        toUserDTO(target),
		"records":     toRecordDTOs(records),
		"total_hours": total.Float64(),
	})
}

// AdminToggleAdmin flips another user's admin flag. Changing your own
// flag is rejected so the last admin cannot lock everyone out.
// POST /api/admin/users/{id}/toggle-admin
func (h *Handler) AdminToggleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := userFrom(ctx)
	id := ce.UserID(chi.URLParam(r, "id"))

	if id == actor.ID {
		writeError(w, http.StatusBadRequest, "You cannot change your own admin status.", ce.ErrInvalidInput)
		return
	}

	target, err := h.Store.UserByID(ctx, id)
	if err != nil {
		writeDomainError(w, "User not found.", err)
		return
	}

	target.IsAdmin = !target.IsAdmin
	if err := h.Store.UpdateUser(ctx, target); err != nil {
		writeDomainError(w, "Failed to update user", err)
		return
	}

	status := "revoked"
	if target.IsAdmin {
		status = "granted"
	}
	h.Log.Info().
		Str("actor", actor.Username).
		Str("target", target.Username).
		Bool("is_admin", target.IsAdmin).
		Msg("admin toggle")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Admin access " + status + " for " + target.Username + ".",
		"is_admin": target.IsAdmin,
	})
}

// =============================================================================
// COMPLIANCE SNAPSHOTS
// =============================================================================

// AdminListSnapshots returns the latest capture per user and
// designation, ordered with the least-compliant first so the accounts
// needing a nudge sit at the top.
// GET /api/admin/snapshots
func (h *Handler) AdminListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snaps, err := h.Store.LatestSnapshots(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshots", err)
		return
	}

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load users", err)
		return
	}
	names := make(map[ce.UserID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Complete != snaps[j].Complete {
			return !snaps[i].Complete
		}
		return snaps[i].TotalPercent < snaps[j].TotalPercent
	})

	dtos := make([]SnapshotDTO, 0, len(snaps))
	for _, snap := range snaps {
		dtos = append(dtos, toSnapshotDTO(snap, names[snap.UserID]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AdminRefreshSnapshots recomputes and persists a capture for every
// user, same as the scheduler but on demand.
// POST /api/admin/snapshots/refresh
func (h *Handler) AdminRefreshSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	captured, err := h.Snaps.CaptureAll(ctx, h.now(), ce.SnapshotManual)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh snapshots", err)
		return
	}

	h.Log.Info().Int("captured", captured).Msg("manual snapshot refresh")
	writeJSON(w, http.StatusOK, map[string]any{
		"captured": captured,
		"message":  "Compliance snapshots refreshed.",
	})
}
