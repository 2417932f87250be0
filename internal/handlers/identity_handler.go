package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/identity"
	"github.com/sokocrafts/sokoni/internal/middleware"
	"github.com/sokocrafts/sokoni/internal/store"
)

type IdentityHandler struct {
	Logger  *slog.Logger
	Service *identity.Service
}

func (ih *IdentityHandler) RegisterHandlers(router *http.ServeMux) {
	router.HandleFunc("POST /auth/register", ih.Register)
	router.HandleFunc("POST /auth/login", ih.Login)
	router.HandleFunc("GET /users/{userId}", ih.GetUser)
	router.HandleFunc("PUT /users/{userId}", ih.UpdateUser)
	router.HandleFunc("DELETE /users/{userId}", ih.DeleteUser)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

type authResponse struct {
	User  identityResponse `json:"user"`
	Token string           `json:"token"`
}

func (ih *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.Name == "" || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Please check your request body and try again")
		return
	}

	role, err := claims.ParseRole(body.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Role must be either BUYER or SELLER")
		return
	}

	result, err := ih.Service.Register(r.Context(), identity.RegisterParams{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     role,
		Avatar:   body.Avatar,
	})
	if errors.Is(err, identity.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	if err != nil {
		ih.Logger.Error("Failed to register account", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User:  toIdentityResponse(&result.Identity),
		Token: result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ih *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Please check your request body and try again")
		return
	}

	result, err := ih.Service.Login(r.Context(), body.Email, body.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		ih.Logger.Error("Failed to log in", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:  toIdentityResponse(&result.Identity),
		Token: result.Token,
	})
}

func (ih *IdentityHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := ih.Service.Get(r.Context(), r.PathValue("userId"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Account does not exist")
		return
	}
	if err != nil {
		ih.Logger.Error("Failed to fetch account", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(user))
}

// requireSelf allows an account mutation only for the authenticated
// owner of that account.
func requireSelf(w http.ResponseWriter, r *http.Request, userID string) bool {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return false
	}
	if principal.SubjectID != userID {
		writeError(w, http.StatusForbidden, "You can only manage your own account")
		return false
	}
	return true
}

type updateUserRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

func (ih *IdentityHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if !requireSelf(w, r, userID) {
		return
	}

	var body updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Please check your request body and try again")
		return
	}

	user, err := ih.Service.Update(r.Context(), userID, identity.UpdateParams{
		Name:   body.Name,
		Avatar: body.Avatar,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Account does not exist")
		return
	}
	if err != nil {
		ih.Logger.Error("Failed to update account", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(user))
}

func (ih *IdentityHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if !requireSelf(w, r, userID) {
		return
	}

	err := ih.Service.Delete(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Account does not exist")
		return
	}
	if err != nil {
		ih.Logger.Error("Failed to delete account", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
