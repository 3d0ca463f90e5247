package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/services"
)

const HeaderSessionToken = "X-Session-Token"

type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

type SessionMiddleware struct {
	log      *logger.Logger
	auth     services.AuthService
	sessions services.SessionService
	cookie   CookieConfig
}

func NewSessionMiddleware(log *logger.Logger, auth services.AuthService, sessions services.SessionService, cookie CookieConfig) *SessionMiddleware {
	if strings.TrimSpace(cookie.Name) == "" {
		cookie.Name = "pylearn_session"
	}
	return &SessionMiddleware{
		log:      log.With("Middleware", "SessionMiddleware"),
		auth:     auth,
		sessions: sessions,
		cookie:   cookie,
	}
}

// AttachSession resolves the browser session from the token (bearer header, cookie or
// query). A missing or invalid token starts a new session and issues its token.
func (sm *SessionMiddleware) AttachSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sm.extractToken(c)
		sid, err := sm.auth.ParseSessionToken(token)
		if err != nil {
			sid = uuid.New()
			token, err = sm.auth.NewSessionToken(sid)
			if err != nil {
				sm.log.Error("issue session token failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"message": "could not start session", "code": "session_failed"},
				})
				return
			}
			sm.Issue(c, token)
		}

		sd := &ctxutil.SessionData{SessionID: sid, Token: token}
		st, err := sm.sessions.Load(c.Request.Context(), sid)
		if err != nil {
			sm.log.Warn("load session failed", "session_id", sid, "error", err)
		} else if st.AuthStatus {
			sd.UserID = st.UserID()
		}
		c.Request = c.Request.WithContext(ctxutil.WithSessionData(c.Request.Context(), sd))
		c.Next()
	}
}

func (sm *SessionMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sd := ctxutil.GetSessionData(c.Request.Context())
		if sd == nil || sd.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Please log in first", "code": "not_authenticated"},
			})
			return
		}
		c.Next()
	}
}

// Issue sets the session cookie and echoes the token in X-Session-Token.
func (sm *SessionMiddleware) Issue(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sm.cookie.Name, token, int(sm.auth.SessionTTL().Seconds()), "/", sm.cookie.Domain, sm.cookie.Secure, true)
	c.Header(HeaderSessionToken, token)
}

func (sm *SessionMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if ck, err := c.Cookie(sm.cookie.Name); err == nil && ck != "" {
		return ck
	}
	return c.Query("token")
}
