/*
auth.go - Registration, login, and password reset

PURPOSE:
  Account lifecycle endpoints. Registration optionally creates the
  user's designation assignments in the same request so a new advisor
  lands on a working dashboard. Password reset is token based: a
  one-hour token is generated on request and emailed as a link.

SECURITY NOTES:
  - Passwords hashed with bcrypt at default cost
  - Login failures are uniform: the response never says whether the
    username or the password was wrong
  - Forgot-password always answers 202 so the endpoint cannot be used
    to probe which emails have accounts
*/
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/designations"
)

const minPasswordLength = 6

// =============================================================================
// REGISTRATION
// =============================================================================

// Register creates an account, optionally with initial designations.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var problems []string
	if req.Username == "" {
		problems = append(problems, "Username is required.")
	}
	if req.Email == "" {
		problems = append(problems, "Email is required.")
	} else if !validEmail(req.Email) {
		problems = append(problems, "Please enter a valid email address.")
	}
	if req.Password == "" {
		problems = append(problems, "Password is required.")
	} else if len(req.Password) < minPasswordLength {
		problems = append(problems, "Password must be at least 6 characters long.")
	}
	if req.Password != "" && req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		problems = append(problems, "Passwords do not match.")
	}
	if !req.DisclaimerAck {
		problems = append(problems, "You must acknowledge the disclaimer to register.")
	}

	// Per-code anchor validation happens before anything is written.
	for _, d := range req.Designations {
		code := ce.Designation(strings.TrimSpace(d.Code))
		if !designations.IsAllowed(code) {
			problems = append(problems, "Unknown designation: "+string(code))
			continue
		}
		if designations.NeedsBirthMonth(code) {
			if d.BirthMonth == 0 {
				problems = append(problems, "Birth month is required for CFP designation.")
			} else if d.BirthMonth < 1 || d.BirthMonth > 12 {
				problems = append(problems, "Birth month must be between 1 and 12.")
			}
		}
		if designations.NeedsState(code) {
			state := strings.TrimSpace(d.State)
			if state == "" {
				problems = append(problems, "State is required for CPA designation.")
			} else if !validState(state) {
				problems = append(problems, "Invalid state abbreviation. Please use a 2-letter state code (e.g., CA, NY, TX).")
			}
		}
	}

	var joinDate *ce.TimePoint
	if req.NapfaMember {
		if req.NapfaJoinDate == "" {
			problems = append(problems, "NAPFA join date is required if you are a NAPFA member.")
		} else {
			tp, err := ce.ParseDate(req.NapfaJoinDate)
			if err != nil {
				problems = append(problems, "Invalid NAPFA join date format.")
			} else {
				joinDate = &tp
			}
		}
	}

	if len(problems) > 0 {
		writeValidation(w, problems)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	user := ce.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  string(hash),
		NapfaMember:   req.NapfaMember,
		NapfaJoinDate: joinDate,
	}
	if err := h.Store.CreateUser(ctx, &user); err != nil {
		if ce.IsDuplicate(err) {
			writeDomainError(w, duplicateAccountMessage(err), err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	for _, d := range req.Designations {
		code := ce.Designation(strings.TrimSpace(d.Code))
		asn := ce.DesignationAssignment{
			UserID: user.ID,
			Code:   code,
		}
		if designations.NeedsBirthMonth(code) {
			asn.BirthMonth = d.BirthMonth
		}
		if designations.NeedsState(code) {
			asn.State = strings.ToUpper(strings.TrimSpace(d.State))
		}
		if err := h.Store.CreateAssignment(ctx, &asn); err != nil && !ce.IsDuplicate(err) {
			writeError(w, http.StatusInternalServerError, "Failed to save designation", err)
			return
		}
	}

	token, err := h.Tokens.Issue(user.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	h.Log.Info().Str("username", user.Username).Msg("account created")
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserDTO(user)})
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login exchanges credentials for a bearer token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please enter both username and password.", ce.ErrInvalidInput)
		return
	}

	user, err := h.Store.UserByUsername(ctx, req.Username)
	if err != nil {
		// Same answer as a wrong password; do not reveal which part
		// failed.
		writeError(w, http.StatusUnauthorized, "Invalid username or password.", ce.ErrInvalidCredentials)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password.", ce.ErrInvalidCredentials)
		return
	}

	token, err := h.Tokens.Issue(user.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	h.Log.Info().Str("username", user.Username).Msg("login")
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserDTO(user)})
}

// Logout acknowledges the end of a session. Tokens are stateless, so
// the client discards its copy; nothing is stored server side.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "You have been logged out."})
}

// =============================================================================
// PASSWORD RESET
// =============================================================================

// ForgotPassword starts a reset. The response is 202 regardless of
// whether the email matches an account.
// POST /api/auth/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Please enter your email address.", ce.ErrInvalidInput)
		return
	}

	user, err := h.Store.UserByEmail(ctx, req.Email)
	if err == nil {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")
		expiry := time.Now().Add(h.ResetTTL)
		user.ResetToken = token
		user.ResetTokenExpiry = &expiry
		if err := h.Store.UpdateUser(ctx, user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to start password reset", err)
			return
		}

		resetURL := strings.TrimRight(h.BaseURL, "/") + "/reset-password?token=" + token
		if err := h.Mail.SendPasswordReset(ctx, user.Email, user.Username, resetURL); err != nil {
			// The token is saved; a delivery hiccup should not break
			// the flow or leak account existence.
			h.Log.Warn().Err(err).Msg("reset email failed")
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "If an account with that email exists, a reset link has been sent.",
	})
}

// ResetPassword redeems a token for a new password.
// POST /api/auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "This reset link is invalid or has expired.", ce.ErrInvalidInput)
		return
	}

	user, err := h.Store.UserByResetToken(ctx, req.Token)
	if err != nil || user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "This reset link is invalid or has expired.", ce.ErrInvalidInput)
		return
	}

	var problems []string
	if req.Password == "" {
		problems = append(problems, "New password is required.")
	} else if len(req.Password) < minPasswordLength {
		problems = append(problems, "Password must be at least 6 characters long.")
	}
	if req.Password != req.ConfirmPassword {
		problems = append(problems, "Passwords do not match.")
	}
	if len(problems) > 0 {
		writeValidation(w, problems)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset password", err)
		return
	}
	user.PasswordHash = string(hash)
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset password", err)
		return
	}

	h.Log.Info().Str("username", user.Username).Msg("password reset")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been reset! Please log in."})
}

// =============================================================================
// VALIDATION HELPERS
// =============================================================================

// writeValidation reports every problem at once instead of making the
// client fix them one round trip at a time.
func writeValidation(w http.ResponseWriter, problems []string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   problems[0],
		Code:    "invalid_input",
		Details: problems,
	})
}

// validEmail applies the same loose shape check the UI does: some text,
// an @, a dot in the domain.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(email, " ")
}

func validState(state string) bool {
	if len(state) != 2 {
		return false
	}
	for _, c := range state {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// duplicateAccountMessage picks the wording for the two uniqueness
// failures.
func duplicateAccountMessage(err error) string {
	if errors.Is(err, ce.ErrDuplicateEmail) {
		return "Email already exists."
	}
	return "Username already exists."
}
