package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/http/response"
	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/pylearn-backend/internal/services"
)

type ActivityHandler struct {
	activity services.ActivityService
}

func NewActivityHandler(activity services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// GET /api/progress?limit=N
func (h *ActivityHandler) Progress(c *gin.Context) {
	sd := ctxutil.GetSessionData(c.Request.Context())
	if sd == nil || sd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "not_authenticated", errNoSession)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	p, err := h.activity.Progress(c.Request.Context(), sd.UserID, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, p)
}
