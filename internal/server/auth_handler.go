package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	sessions    *SessionRegistry
	validator   *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, sessions *SessionRegistry, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		sessions:    sessions,
		validator:   validator.New(),
		log:         logger.OrNop(log),
	}
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*types.CredentialsRequest, bool) {
	var req types.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, extractValidationErrors(err))
		return nil, false
	}
	return &req, true
}

// Register handles user registration requests. A taken username answers 409
// with registered=false.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("registration failed", zap.String("username", req.Username), zap.Error(err))
			writeError(w, h.log, status, "registration failed")
			return
		}
		writeJSON(w, h.log, status, types.RegisterResponse{Registered: false, Message: err.Error()})
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID.String()))
	writeJSON(w, h.log, http.StatusCreated, types.RegisterResponse{Registered: true, User: user})
}

// Login handles user login requests and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("login failed", zap.Error(err))
			writeError(w, h.log, status, "login failed")
			return
		}
		writeError(w, h.log, status, err.Error())
		return
	}

	expiresAt := h.jwtService.now().Add(h.jwtService.config.Expiration())
	sessionID := h.sessions.Create(user.ID, expiresAt)
	token, expiresAt, err := h.jwtService.GenerateToken(user.ID, sessionID)
	if err != nil {
		h.sessions.Revoke(sessionID)
		h.log.Error("failed to generate token", zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	writeJSON(w, h.log, http.StatusOK, types.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Logout ends the caller's session. The token stops working immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		writeError(w, h.log, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.sessions.Revoke(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
