package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pylearn-backend/internal/http/response"
	"github.com/yungbote/pylearn-backend/internal/services"
)

// SessionIssuer hands a session token back to the client.
type SessionIssuer interface {
	Issue(c *gin.Context, token string)
}

type AuthHandler struct {
	authService services.AuthService
	issuer      SessionIssuer
}

func NewAuthHandler(authService services.AuthService, issuer SessionIssuer) *AuthHandler {
	return &AuthHandler{authService: authService, issuer: issuer}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ok, err := ah.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": ok, "message": "Registration successful! Please log in."})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), sid, req.Username, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if ah.issuer != nil {
		ah.issuer.Issue(c, res.Token)
	}
	response.RespondOK(c, gin.H{"state": res.State})
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := ah.authService.Logout(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}
