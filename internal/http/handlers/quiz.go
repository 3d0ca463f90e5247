package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pylearn-backend/internal/http/response"
	"github.com/yungbote/pylearn-backend/internal/services"
)

type QuizHandler struct {
	quiz services.QuizService
}

func NewQuizHandler(quiz services.QuizService) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

// PUT /api/quiz/topic
func (h *QuizHandler) SetTopic(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := h.quiz.SetTopic(c.Request.Context(), sid, req.Topic)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}

// POST /api/quiz/start
func (h *QuizHandler) Start(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.quiz.Start(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}

// POST /api/quiz/answers
func (h *QuizHandler) Submit(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req struct {
		Index  *int   `json:"index"`
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Index == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissingIndex)
		return
	}
	out, err := h.quiz.Submit(c.Request.Context(), sid, *req.Index, req.Answer)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/quiz/restart
func (h *QuizHandler) Restart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.quiz.Restart(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}

// GET /api/quiz/analysis
func (h *QuizHandler) Analysis(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	a, err := h.quiz.Analysis(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, a)
}

// GET /api/quiz/chart.png
func (h *QuizHandler) Chart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	png, err := h.quiz.Chart(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// POST /api/quiz/video
func (h *QuizHandler) VideoFromQuiz(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.quiz.VideoFromQuiz(c.Request.Context(), sid)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": st})
}
