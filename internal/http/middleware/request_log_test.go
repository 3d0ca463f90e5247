package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

func TestAttachTraceContextRejectsOddRequestIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.RequestID(c.Request.Context()))
	})

	for _, bad := range []string{"has space", strings.Repeat("a", maxRequestIDLen+1), "semi;colon"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, bad)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		got := rec.Body.String()
		if got == bad || got == "" {
			t.Fatalf("request id %q should be replaced, got %q", bad, got)
		}
		if rec.Header().Get(headerRequestID) != got {
			t.Fatalf("header and context disagree: %q vs %q", rec.Header().Get(headerRequestID), got)
		}
	}
}

func TestAttachTraceContextGeneratesTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	traceID := rec.Header().Get(headerTraceID)
	if len(traceID) != 32 || strings.Contains(traceID, "-") {
		t.Fatalf("unexpected trace id %q", traceID)
	}
}
