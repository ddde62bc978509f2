package handlers

import (
	"encoding/json"
	"net/http"

	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

func (s *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readAuthRequest(w, r)
	if !ok {
		return
	}

	u, err := s.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Пользователь вошёл", zap.Int64("user_id", u.ID))
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (s *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := readAuthRequest(w, r)
	if !ok {
		return
	}

	u, err := s.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован", zap.Int64("user_id", u.ID))
	responseWithBody(w, http.StatusCreated, dto.FromUser(u))
}

func readAuthRequest(w http.ResponseWriter, r *http.Request) (dto.AuthRequest, bool) {
	var req dto.AuthRequest

	if mediaType(r) != "application/json" {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", codeUnsupported)
		return req, false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid JSON body", codeBadRequest)
		return req, false
	}

	if err := validateRequest(req); err != nil {
		handleError(w, r, err, "auth")
		return req, false
	}
	return req, true
}
