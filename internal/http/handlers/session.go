package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pylearn-backend/internal/http/response"
	"github.com/yungbote/pylearn-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GET /api/session
func (h *SessionHandler) GetState(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.sessions.Load(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}

// GET /api/session/view
func (h *SessionHandler) Render(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	v, err := h.sessions.Render(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, v)
}

// POST /api/session/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req struct {
		Page string `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if _, err := h.sessions.Navigate(c.Request.Context(), sid, req.Page); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	h.Render(c)
}
