package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"skytracker/backend/internal/middleware"
	"skytracker/backend/internal/models/entities"
	"skytracker/backend/internal/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type sessionResponse struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

func setSessionCookie(w http.ResponseWriter, token string, lifetime time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignupHandler handles POST /api/auth/signup
func SignupHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, token, err := authSvc.Register(r.Context(), req.Email, req.Password, req.FullName, req.Username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailTaken):
				respondWithError(w, http.StatusConflict, err.Error())
			case errors.Is(err, services.ErrInvalidCredentials):
				respondWithError(w, http.StatusBadRequest, "Email, username, and password are required")
			default:
				respondWithError(w, http.StatusInternalServerError, "Could not create account")
			}
			return
		}

		setSessionCookie(w, token, 7*24*time.Hour)
		respondWithSuccess(w, http.StatusCreated, &sessionResponse{User: user, Token: token})
	}
}

// LoginHandler handles POST /api/auth/login. The identifier field accepts
// either an email or a username.
func LoginHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Identifier string `json:"identifier"`
			Email      string `json:"email"`
			Password   string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Identifier == "" {
			req.Identifier = req.Email
		}

		user, token, err := authSvc.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		setSessionCookie(w, token, 7*24*time.Hour)
		respondWithSuccess(w, http.StatusOK, &sessionResponse{User: user, Token: token})
	}
}

// LogoutHandler handles POST /api/auth/logout. Sessions are stateless, so this
// only clears the cookie.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setSessionCookie(w, "", -time.Second)
		respondWithSuccess(w, http.StatusOK, &struct {
			Message string `json:"message"`
		}{Message: "Logged out"})
	}
}

// ResetPasswordHandler handles POST /api/auth/reset-password
func ResetPasswordHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Identifier  string `json:"identifier"`
			NewPassword string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := authSvc.ResetPassword(r.Context(), req.Identifier, req.NewPassword); err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				respondWithError(w, http.StatusBadRequest, "Unknown account")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Could not reset password")
			return
		}

		respondWithSuccess(w, http.StatusOK, &struct {
			Message string `json:"message"`
		}{Message: "Password updated"})
	}
}

// MeHandler handles GET /api/auth/me
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		respondWithSuccess(w, http.StatusOK, user)
	}
}

// UpdateProfileHandler handles PUT /api/auth/me
func UpdateProfileHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		updated, err := authSvc.UpdateProfile(r.Context(), user.ID, req.FullName, req.Email, req.Password, req.Username)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not update profile")
			return
		}
		respondWithSuccess(w, http.StatusOK, updated)
	}
}

// DeleteAccountHandler handles DELETE /api/auth/me
func DeleteAccountHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := authSvc.DeleteAccount(r.Context(), user.ID); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not delete account")
			return
		}

		setSessionCookie(w, "", -time.Second)
		respondWithSuccess(w, http.StatusOK, &struct {
			Message string `json:"message"`
		}{Message: "Account deleted"})
	}
}
