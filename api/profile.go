/*
profile.go - Account settings endpoints

PURPOSE:
  The signed-in user's own account: profile payload, email change,
  password change, and NAPFA membership. All four operate on the user
  resolved by the auth middleware; nothing here takes a user ID.
*/
package api

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fairhaven/cetrack/ce"
)

// GetProfile returns the account page payload.
// GET /api/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	asns, err := h.Store.AssignmentsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		User:             toUserDTO(user),
		DesignationCount: len(asns),
	})
}

// UpdateEmail changes the account email after uniqueness checks.
// PUT /api/profile/email
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	var req UpdateEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)

	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required.", ce.ErrInvalidInput)
		return
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "Please enter a valid email address.", ce.ErrInvalidInput)
		return
	}
	if email == user.Email {
		writeError(w, http.StatusBadRequest, "That is already your current email.", ce.ErrInvalidInput)
		return
	}
	if existing, err := h.Store.UserByEmail(ctx, email); err == nil && existing.ID != user.ID {
		writeError(w, http.StatusConflict, "That email is already in use by another account.", ce.ErrDuplicateEmail)
		return
	}

	user.Email = email
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		writeDomainError(w, "Failed to update email", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Email updated successfully!",
		"user":    toUserDTO(user),
	})
}

// UpdatePassword changes the password after verifying the current one.
// PUT /api/profile/password
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	var req UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.CurrentPassword == "" {
		writeError(w, http.StatusBadRequest, "Current password is required.", ce.ErrInvalidInput)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		writeError(w, http.StatusBadRequest, "Current password is incorrect.", ce.ErrInvalidCredentials)
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "New password is required.", ce.ErrInvalidInput)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "New password must be at least 6 characters long.", ce.ErrInvalidInput)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "New passwords do not match.", ce.ErrInvalidInput)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password", err)
		return
	}
	user.PasswordHash = string(hash)
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password", err)
		return
	}

	h.Log.Info().Str("username", user.Username).Msg("password changed")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully!"})
}

// UpdateNapfa sets membership. Joining requires a join date because the
// tier schedule keys off it; leaving clears nothing so rejoining keeps
// the original date unless a new one is sent.
// PUT /api/profile/napfa
func (h *Handler) UpdateNapfa(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	var req UpdateNapfaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Member {
		if req.JoinDate == "" && user.NapfaJoinDate == nil {
			writeError(w, http.StatusBadRequest, "NAPFA join date is required if you are a NAPFA member.", ce.ErrInvalidInput)
			return
		}
		if req.JoinDate != "" {
			tp, err := ce.ParseDate(req.JoinDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid NAPFA join date format.", ce.ErrInvalidInput)
				return
			}
			user.NapfaJoinDate = &tp
		}
	}
	user.NapfaMember = req.Member

	if err := h.Store.UpdateUser(ctx, user); err != nil {
		writeDomainError(w, "Failed to update NAPFA membership", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "NAPFA membership updated.",
		"user":    toUserDTO(user),
	})
}
