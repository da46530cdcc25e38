package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"teacher2student/internal/api/middleware"
	"teacher2student/internal/app/service"
	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/platform/cache"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	tokenStore  cache.TokenStore
}

func NewAuthHandler(authService *service.AuthService, tokenStore cache.TokenStore) *AuthHandler {
	return &AuthHandler{authService: authService, tokenStore: tokenStore}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup/teacher", h.signupTeacher)
	r.Post("/signup/student", h.signupStudent)
	r.Post("/login", h.login)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator(h.tokenStore))
		authed.Post("/logout", h.logout)
		authed.Get("/me", h.profile)
		authed.Put("/me", h.updateProfile)
	})
}

func (h *AuthHandler) signupTeacher(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, model.RoleTeacher)
}

func (h *AuthHandler) signupStudent(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, model.RoleStudent)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, role string) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Signup(r.Context(), role, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	jti, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing token context")
		return
	}
	exp, ok := middleware.GetTokenExpiryFromContext(r.Context())
	if !ok {
		exp = time.Now().Add(24 * time.Hour)
	}

	if err := h.authService.Logout(r.Context(), jti, exp); err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

// respondWithServiceError translates service errors into HTTP responses,
// expanding validation failures into field details.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var fieldErrs *common.FieldErrors
	if errors.As(err, &fieldErrs) {
		common.RespondWithValidationError(w, fieldErrs.Fields)
		return
	}
	common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
}
