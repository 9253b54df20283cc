package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-api/internal/api/metrics"
	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

// AuthHandler handles registration, login, and identity resolution.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func newAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		UserID:   res.User.ID,
		Token:    res.Token,
		Username: res.User.Username,
		Email:    res.User.Email,
		Role:     res.User.Role,
	}
}

// Register creates a new user account and returns a token.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	res, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.AuthRegistrationsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.AuthRegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.AuthRegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, newAuthResponse(res))
}

// Login authenticates a user and returns a token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.AuthLoginsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, domain.ErrUserBanned):
			metrics.AuthLoginsTotal.WithLabelValues("banned").Inc()
		default:
			metrics.AuthLoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, newAuthResponse(res))
}

// Me returns the live user record for the authenticated caller.
//
// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.ResolveCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
