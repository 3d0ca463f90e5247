package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/data/repos"
	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/domain/user"
	"github.com/yungbote/pylearn-backend/internal/platform/apierr"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

const (
	msgMissingCredentials = "Please enter both username and password"
	msgInvalidCredentials = "Invalid username or password"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// LoginResult carries the rotated session. The pre-login session id stops resolving.
type LoginResult struct {
	SessionID uuid.UUID
	Token     string
	State     session.State
}

type AuthService interface {
	NewSessionToken(sid uuid.UUID) (string, error)
	ParseSessionToken(token string) (uuid.UUID, error)
	SessionTTL() time.Duration

	// AuthenticateUser returns nil, nil when the credentials do not match.
	AuthenticateUser(ctx context.Context, username, password string) (*user.User, error)
	Login(ctx context.Context, sid uuid.UUID, username, password string) (*LoginResult, error)
	Register(ctx context.Context, username, email, password, fullName string) (bool, error)
	Logout(ctx context.Context, sid uuid.UUID) (session.State, error)
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	sessions   SessionService
	secret     []byte
	sessionTTL time.Duration
	bcryptCost int
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	sessions SessionService,
	jwtSecretKey string,
	sessionTTL time.Duration,
) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &authService{
		db:         db,
		log:        log.With("service", "AuthService"),
		userRepo:   userRepo,
		sessions:   sessions,
		secret:     []byte(jwtSecretKey),
		sessionTTL: sessionTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (as *authService) SessionTTL() time.Duration { return as.sessionTTL }

func (as *authService) NewSessionToken(sid uuid.UUID) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sid.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.sessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (as *authService) ParseSessionToken(token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, ErrInvalidSessionToken
	}
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidSessionToken
	}
	sid, err := uuid.Parse(claims.SessionID)
	if err != nil || sid == uuid.Nil {
		return uuid.Nil, ErrInvalidSessionToken
	}
	return sid, nil
}

func (as *authService) AuthenticateUser(ctx context.Context, username, password string) (*user.User, error) {
	u, err := as.userRepo.GetByUsername(dbctx.Context{Ctx: ctx}, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

func (as *authService) Login(ctx context.Context, sid uuid.UUID, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apierr.BadRequest("missing_credentials", msgMissingCredentials)
	}
	u, err := as.AuthenticateUser(ctx, username, password)
	if err != nil {
		as.log.Error("authenticate user failed", "error", err)
		return nil, err
	}
	if u == nil {
		as.log.Info("login rejected", "session_id", sid)
		return nil, apierr.Unauthorized("invalid_credentials", msgInvalidCredentials)
	}
	newSID, st, err := as.sessions.Rotate(ctx, sid, func(st *session.State) error {
		st.User = &session.UserRef{ID: u.ID, Username: u.Username, FullName: u.FullName}
		st.AuthStatus = true
		st.Page = session.PageDashboard
		return nil
	})
	if err != nil {
		return nil, err
	}
	token, err := as.NewSessionToken(newSID)
	if err != nil {
		return nil, err
	}
	as.log.Info("user logged in", "user_id", u.ID, "session_id", newSID)
	return &LoginResult{SessionID: newSID, Token: token, State: st}, nil
}

func (as *authService) Register(ctx context.Context, username, email, password, fullName string) (bool, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if username == "" || email == "" || password == "" || fullName == "" {
		return false, apierr.BadRequest("missing_fields", "Please fill in all fields")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return false, apierr.BadRequest("invalid_email", "Please enter a valid email address")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		taken, err := as.userRepo.UsernameExists(dbc, username)
		if err != nil {
			return err
		}
		if taken {
			return apierr.Conflict("username_taken", "Username already exists")
		}
		taken, err = as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if taken {
			return apierr.Conflict("email_taken", "Email already registered")
		}
		_, err = as.userRepo.Create(dbc, []*user.User{{
			Username: username,
			Email:    email,
			Password: string(hash),
			FullName: fullName,
		}})
		return err
	})
	if err != nil {
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) {
			as.log.Error("register user failed", "error", err)
		}
		return false, err
	}
	as.log.Info("user registered", "username", username)
	return true, nil
}

func (as *authService) Logout(ctx context.Context, sid uuid.UUID) (session.State, error) {
	return as.sessions.Reset(ctx, sid)
}
