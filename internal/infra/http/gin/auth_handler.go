package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/dto"
	authsvc "pgfinder/internal/app/services/auth"
)

type AuthHTTP interface {
	SignUp(c *gin.Context)
	Login(c *gin.Context)
	OwnerLogin(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type signUpRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone" binding:"required"`
	Role            string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h AuthHandler) SignUp(c *gin.Context) {
	if h.Service == nil {
		unavailable(c, "auth service")
		return
	}
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Service.SignUp(c.Request.Context(), authsvc.SignUpParams{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		Role:            req.Role,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuthResponse(result.Session, result.User))
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		unavailable(c, "auth service")
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Service.LogIn(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthResponse(result.Session, result.User))
}

func (h AuthHandler) OwnerLogin(c *gin.Context) {
	if h.Service == nil {
		unavailable(c, "auth service")
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.Service.OwnerLogIn(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthResponse(session, nil))
}

func (h AuthHandler) Logout(c *gin.Context) {
	if h.Service == nil {
		unavailable(c, "auth service")
		return
	}
	if err := h.Service.LogOut(c.Request.Context(), bearerTokenFromContext(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the session marker of the caller.
func (h AuthHandler) Me(c *gin.Context) {
	session, ok := requireSession(c, "")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.MapSessionMarker(session))
}

var _ AuthHTTP = AuthHandler{}
