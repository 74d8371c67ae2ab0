/*
designations.go - Managing which credentials a user holds

PURPOSE:
  The catalog of allowed designations annotated with the user's held
  set, plus add/remove. Adding validates the anchor data the period
  rule needs (CFP birth month, CPA state) before writing anything.
*/
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/designations"
)

// ListDesignations returns every allowed code with its requirement
// description and whether the user holds it.
// GET /api/designations
func (h *Handler) ListDesignations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	asns, err := h.Store.AssignmentsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load designations", err)
		return
	}
	held := make(map[ce.Designation]ce.DesignationAssignment, len(asns))
	for _, a := range asns {
		held[a.Code] = a
	}

	dtos := make([]DesignationDTO, 0, len(designations.Allowed))
	for _, code := range designations.Allowed {
		dto := DesignationDTO{
			Code:        string(code),
			Description: designations.Descriptions[string(code)],
		}
		if a, ok := held[code]; ok {
			dto.Held = true
			dto.BirthMonth = a.BirthMonth
			dto.State = a.State
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// AddDesignation assigns one credential to the user.
// POST /api/designations
func (h *Handler) AddDesignation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	var req DesignationInput
	if !decodeJSON(w, r, &req) {
		return
	}
	code := ce.Designation(strings.TrimSpace(req.Code))

	if code == "" || !designations.IsAllowed(code) {
		writeError(w, http.StatusBadRequest, "Invalid designation.", ce.ErrInvalidInput)
		return
	}

	asn := ce.DesignationAssignment{UserID: user.ID, Code: code}
	if designations.NeedsBirthMonth(code) {
		if req.BirthMonth == 0 {
			writeError(w, http.StatusBadRequest, "Birth month is required for CFP designation.", ce.ErrInvalidInput)
			return
		}
		if req.BirthMonth < 1 || req.BirthMonth > 12 {
			writeError(w, http.StatusBadRequest, "Birth month must be between 1 and 12.", ce.ErrInvalidInput)
			return
		}
		asn.BirthMonth = req.BirthMonth
	}
	if designations.NeedsState(code) {
		state := strings.TrimSpace(req.State)
		if state == "" {
			writeError(w, http.StatusBadRequest, "State is required for CPA designation.", ce.ErrInvalidInput)
			return
		}
		if !validState(state) {
			writeError(w, http.StatusBadRequest, "Invalid state abbreviation. Please use a 2-letter state code (e.g., CA, NY, TX).", ce.ErrInvalidInput)
			return
		}
		asn.State = strings.ToUpper(state)
	}

	if err := h.Store.CreateAssignment(ctx, &asn); err != nil {
		if ce.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "You already have the "+string(code)+" designation.", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add designation", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": string(code) + " designation added successfully!",
	})
}

// RemoveDesignation deletes the user's own assignment for a code.
// DELETE /api/designations/{code}
func (h *Handler) RemoveDesignation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	code := ce.Designation(chi.URLParam(r, "code"))
	if err := h.Store.DeleteAssignment(ctx, user.ID, code); err != nil {
		writeDomainError(w, "Failed to remove designation", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": string(code) + " designation removed successfully!",
	})
}
