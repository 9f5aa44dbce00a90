package handler

import (
	"errors"
	"net/http"

	"stockswift/internal/apierror"
	"stockswift/internal/dto"
	"stockswift/internal/middleware"
	"stockswift/internal/service"
	"stockswift/internal/token"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc    service.AuthService
	tokens *token.Service
}

func NewAuthHandler(svc service.AuthService, tokens *token.Service) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignupRequest true "Account details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apierror.APIError
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}

	resp, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.Error(err) //nolint:errcheck
			c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		}
		return
	}

	h.tokens.SetAuthCookie(c, resp.Token)
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
			return
		}
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}

	h.tokens.SetAuthCookie(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Me returns the session owner, re-fetched from the store by token user id.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Whoami(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout clears the session cookie. The token itself stays valid until
// expiry — there is no server-side revocation.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.tokens.ClearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
