/*
records.go - CE record CRUD

PURPOSE:
  The user's CE history: list with category filter, create, edit,
  delete. Ownership is enforced on every mutation; a user can never
  touch another user's records no matter what ID they send.
*/
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairhaven/cetrack/ce"
)

// ListRecords returns the user's records newest first, optionally
// filtered by exact category, together with the distinct category list
// and total hours across the returned set.
// GET /api/records?category=...
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)
	filter := r.URL.Query().Get("category")

	records, err := h.Store.RecordsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	seen := map[string]bool{}
	var categories []string
	for _, rec := range records {
		if rec.Category != "" && !seen[rec.Category] {
			seen[rec.Category] = true
			categories = append(categories, rec.Category)
		}
	}
	sort.Strings(categories)

	filtered := records
	if filter != "" {
		filtered = filtered[:0:0]
		for _, rec := range records {
			if rec.Category == filter {
				filtered = append(filtered, rec)
			}
		}
	}

	total := ce.Hours(0)
	for _, rec := range filtered {
		total = total.Add(rec.Hours)
	}

	writeJSON(w, http.StatusOK, RecordsResponse{
		Records:    toRecordDTOs(filtered),
		Categories: categories,
		TotalHours: total.Float64(),
	})
}

// CreateRecord adds one CE record.
// POST /api/records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	var req SaveRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, ok := h.recordFromRequest(w, user.ID, req)
	if !ok {
		return
	}

	if err := h.Store.CreateRecord(ctx, &rec); err != nil {
		if ce.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "An identical record already exists.", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add record", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "CE record added successfully!",
		"record":  toRecordDTO(rec),
	})
}

// UpdateRecord overwrites a record the user owns.
// PUT /api/records/{id}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)
	id := ce.RecordID(chi.URLParam(r, "id"))

	existing, err := h.Store.RecordByID(ctx, id)
	if err != nil {
		writeDomainError(w, "Record not found", err)
		return
	}
	if existing.UserID != user.ID {
		writeError(w, http.StatusForbidden, "You do not have permission to edit this record.", ce.ErrUnauthorized)
		return
	}

	var req SaveRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, ok := h.recordFromRequest(w, user.ID, req)
	if !ok {
		return
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt

	if err := h.Store.UpdateRecord(ctx, rec); err != nil {
		writeDomainError(w, "Failed to update record", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "CE record updated successfully!",
		"record":  toRecordDTO(rec),
	})
}

// DeleteRecord removes a record the user owns.
// DELETE /api/records/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)
	id := ce.RecordID(chi.URLParam(r, "id"))

	existing, err := h.Store.RecordByID(ctx, id)
	if err != nil {
		writeDomainError(w, "Record not found", err)
		return
	}
	if existing.UserID != user.ID {
		writeError(w, http.StatusForbidden, "You do not have permission to delete this record.", ce.ErrUnauthorized)
		return
	}

	if err := h.Store.DeleteRecord(ctx, id); err != nil {
		writeDomainError(w, "Failed to delete record", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "CE record deleted successfully!"})
}

// recordFromRequest validates a save request and builds the record. On
// failure it writes the 400 itself and returns ok=false.
func (h *Handler) recordFromRequest(w http.ResponseWriter, userID ce.UserID, req SaveRecordRequest) (ce.Record, bool) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Hours == 0 || req.DateCompleted == "" {
		writeError(w, http.StatusBadRequest, "Title, hours, and date completed are required.", ce.ErrInvalidInput)
		return ce.Record{}, false
	}
	if req.Hours < 0 {
		writeError(w, http.StatusBadRequest, "Hours must be a positive number.", ce.ErrInvalidInput)
		return ce.Record{}, false
	}
	completed, err := ce.ParseDate(req.DateCompleted)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours or date format.", ce.ErrInvalidInput)
		return ce.Record{}, false
	}

	return ce.Record{
		UserID:           userID,
		Title:            title,
		Provider:         strings.TrimSpace(req.Provider),
		Hours:            ce.Hours(req.Hours),
		CompletedOn:      completed,
		Category:         strings.TrimSpace(req.Category),
		Description:      strings.TrimSpace(req.Description),
		NapfaApproved:    req.IsNapfaApproved,
		EthicsCourse:     req.IsEthicsCourse,
		NapfaSubjectArea: strings.TrimSpace(req.NapfaSubjectArea),
	}, true
}
