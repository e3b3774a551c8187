package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"daisy/internal/middleware"
	"daisy/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	me := protected.Group("/auth/me")
	{
		me.GET("", h.GetMe)
		me.PUT("/username", h.SetUsername)
	}
}

// Register creates an account and returns a token for it.
// @Summary		Register
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"email, username, password"
// @Success		201	{object}	AuthResponse
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}	"email already registered"
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, AuthResponse{User: toPublic(user), Token: token})
}

// Login
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"email, password"
// @Success		200	{object}	AuthResponse
// @Failure		401	{object}	map[string]interface{}	"wrong password"
// @Failure		404	{object}	map[string]interface{}	"email not registered"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotRegistered):
			response.Error(c, http.StatusNotFound, "NOT_REGISTERED", "No account with this email")
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Wrong password")
		case errors.Is(err, ErrInactive):
			response.Error(c, http.StatusUnauthorized, "USER_INACTIVE", "Account is disabled")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Login failed")
		}
		return
	}

	response.Success(c, http.StatusOK, AuthResponse{User: toPublic(user), Token: token})
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load user")
		return
	}
	response.Success(c, http.StatusOK, toPublic(user))
}

func (h *Handler) SetUsername(c *gin.Context) {
	var req SetUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	user, err := h.service.SetUsername(c.Request.Context(), middleware.UserID(c), req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to update username")
		return
	}
	response.Success(c, http.StatusOK, toPublic(user))
}
