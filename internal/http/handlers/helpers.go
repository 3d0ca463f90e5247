package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/http/response"
	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
)

var (
	errNoSession    = errors.New("missing session")
	errMissingIndex = errors.New("index is required")
)

// sessionID returns the session attached by the session middleware, writing a 401 when
// there is none.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	sd := ctxutil.GetSessionData(c.Request.Context())
	if sd == nil || sd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "no_session", errNoSession)
		return uuid.Nil, false
	}
	return sd.SessionID, true
}

type topicRequest struct {
	Topic string `json:"topic"`
}
