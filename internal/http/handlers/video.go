package handlers

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pylearn-backend/internal/http/response"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/services"
)

type VideoHandler struct {
	log   *logger.Logger
	video services.VideoService
}

func NewVideoHandler(log *logger.Logger, video services.VideoService) *VideoHandler {
	return &VideoHandler{log: log.With("handler", "VideoHandler"), video: video}
}

// PUT /api/video/topic
func (h *VideoHandler) SetTopic(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := h.video.SetTopic(c.Request.Context(), sid, req.Topic)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}

// POST /api/video/generate
// A failed step is reported in the body with success=false, not as an HTTP error.
func (h *VideoHandler) Generate(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	res, err := h.video.Generate(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/video/download
func (h *VideoHandler) Download(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	dl, err := h.video.Download(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	defer dl.Body.Close()

	c.Header("Content-Type", dl.ContentType)
	c.Header("Content-Disposition", attachmentDisposition(dl.Filename))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		h.log.Warn("video download interrupted", "error", err)
	}
}

// POST /api/video/quiz
func (h *VideoHandler) QuizFromVideo(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.video.QuizFromVideo(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}

// attachmentDisposition renders an RFC 6266 header. Non-ASCII names use the
// RFC 2231 filename* form.
func attachmentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
