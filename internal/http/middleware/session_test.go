package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/services"
)

func newSessionEngine(t *testing.T) (*gin.Engine, services.AuthService, services.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	sessions := services.NewSessionService(log, services.NewMemorySessionStore(time.Hour))
	auth := services.NewAuthService(nil, log, nil, sessions, "mw-secret", time.Hour)
	sm := NewSessionMiddleware(log, auth, sessions, CookieConfig{Name: "sid"})

	r := gin.New()
	r.Use(sm.AttachSession())
	r.GET("/whoami", func(c *gin.Context) {
		sd := ctxutil.GetSessionData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"sid": sd.SessionID.String(), "user_id": sd.UserID.String()})
	})
	r.GET("/private", sm.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, auth, sessions
}

func TestAttachSessionIssuesToken(t *testing.T) {
	r, auth, _ := newSessionEngine(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	tok := rec.Header().Get(HeaderSessionToken)
	if tok == "" {
		t.Fatal("expected a new session token")
	}
	if _, err := auth.ParseSessionToken(tok); err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" && ck.Value == tok && ck.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatal("expected http-only cookie carrying the token")
	}
}

func TestAttachSessionAcceptsExistingToken(t *testing.T) {
	r, auth, _ := newSessionEngine(t)
	sid := uuid.New()
	tok, err := auth.NewSessionToken(sid)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	for name, mutate := range map[string]func(*http.Request){
		"bearer": func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) },
		"cookie": func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "sid", Value: tok}) },
		"query":  func(req *http.Request) { req.URL.RawQuery = "token=" + tok },
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		mutate(req)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Header().Get(HeaderSessionToken) != "" {
			t.Fatalf("%s: valid token should not be reissued", name)
		}
		if want := `"sid":"` + sid.String() + `"`; !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("%s: body %s missing %s", name, rec.Body.String(), want)
		}
	}
}

func TestAttachSessionPrefersCookieOverQuery(t *testing.T) {
	r, auth, _ := newSessionEngine(t)
	own, planted := uuid.New(), uuid.New()
	ownTok, _ := auth.NewSessionToken(own)
	plantedTok, _ := auth.NewSessionToken(planted)

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+plantedTok, nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: ownTok})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if want := `"sid":"` + own.String() + `"`; !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("cookie session should win over the query token: %s", rec.Body.String())
	}
}

func TestRequireAuth(t *testing.T) {
	r, auth, sessions := newSessionEngine(t)
	sid := uuid.New()
	tok, _ := auth.NewSessionToken(sid)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous session: got %d", rec.Code)
	}

	_, err := sessions.Update(context.Background(), sid, func(st *session.State) error {
		st.AuthStatus = true
		st.User = &session.UserRef{ID: uuid.New(), Username: "ada"}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logged in session: got %d", rec.Code)
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get(headerRequestID) != "req-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", rec.Body.String(), rec.Header().Get(headerRequestID))
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatal("expected a trace id")
	}
}
