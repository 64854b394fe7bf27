package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mabel-app/mabel-backend/internal/adapter/dto"
	"github.com/mabel-app/mabel-backend/internal/usecase/auth"
)

// Auth handles authentication HTTP requests
type Auth struct {
	authService auth.Service
	logger      *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService auth.Service, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Register creates an account
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account details"
// @Success 201 {object} dto.SessionResponse
// @Router /v1/auth/register [post]
func (h *Auth) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	user, pair, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusCreated, dto.NewSessionResponse(user, pair))
}

// Login exchanges credentials for tokens
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.SessionResponse
// @Router /v1/auth/login [post]
func (h *Auth) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	user, pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewSessionResponse(user, pair))
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh session tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair
// @Router /v1/auth/refresh [post]
func (h *Auth) Refresh(c echo.Context) error {
	var req dto.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, pair)
}

// Me returns the authenticated user
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Router /v1/auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	user, err := h.authService.Me(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewUserResponse(user))
}
