package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/platform/apierr"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

const (
	ViewLogin = "login"

	sidebarTitle  = "Python Learning"
	sidebarFooter = "Python Learning Platform"
)

var pageLabels = map[session.Page]string{
	session.PageDashboard:      "Dashboard",
	session.PageVideoGenerator: "Video Generator",
	session.PageQuizGenerator:  "Quiz Generator",
}

type SessionService interface {
	Load(ctx context.Context, sid uuid.UUID) (session.State, error)
	// Update runs fn against the stored state under the session lock and saves the
	// result when fn returns nil.
	Update(ctx context.Context, sid uuid.UUID, fn func(st *session.State) error) (session.State, error)
	// Rotate applies fn to the state stored under sid, moves it to a fresh session id and
	// deletes the old entry.
	Rotate(ctx context.Context, sid uuid.UUID, fn func(st *session.State) error) (uuid.UUID, session.State, error)
	Reset(ctx context.Context, sid uuid.UUID) (session.State, error)
	Navigate(ctx context.Context, sid uuid.UUID, page string) (session.State, error)
	Render(ctx context.Context, sid uuid.UUID) (View, error)
}

type sessionService struct {
	log   *logger.Logger
	store SessionStore
	locks *sessionLocks
}

func NewSessionService(log *logger.Logger, store SessionStore) SessionService {
	return &sessionService{
		log:   log.With("service", "SessionService"),
		store: store,
		locks: newSessionLocks(),
	}
}

func (s *sessionService) Load(ctx context.Context, sid uuid.UUID) (session.State, error) {
	return s.store.Load(ctx, sid)
}

func (s *sessionService) Update(ctx context.Context, sid uuid.UUID, fn func(st *session.State) error) (session.State, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	st, err := s.store.Load(ctx, sid)
	if err != nil {
		return session.Defaults(), err
	}
	if err := fn(&st); err != nil {
		return st, err
	}
	st.Normalize()
	if err := s.store.Save(ctx, sid, st); err != nil {
		s.log.Error("save session state failed", "session_id", sid, "error", err)
		return st, err
	}
	return st, nil
}

func (s *sessionService) Rotate(ctx context.Context, sid uuid.UUID, fn func(st *session.State) error) (uuid.UUID, session.State, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	st, err := s.store.Load(ctx, sid)
	if err != nil {
		return uuid.Nil, session.Defaults(), err
	}
	if err := fn(&st); err != nil {
		return uuid.Nil, st, err
	}
	st.Normalize()
	newSID := uuid.New()
	if err := s.store.Save(ctx, newSID, st); err != nil {
		s.log.Error("save rotated session failed", "session_id", newSID, "error", err)
		return uuid.Nil, st, err
	}
	if err := s.store.Delete(ctx, sid); err != nil {
		s.log.Warn("delete pre-rotation session failed", "session_id", sid, "error", err)
	}
	return newSID, st, nil
}

func (s *sessionService) Reset(ctx context.Context, sid uuid.UUID) (session.State, error) {
	return s.Update(ctx, sid, func(st *session.State) error {
		*st = session.Defaults()
		return nil
	})
}

func (s *sessionService) Navigate(ctx context.Context, sid uuid.UUID, page string) (session.State, error) {
	p, ok := session.ParsePage(page)
	if !ok {
		return session.Defaults(), apierr.BadRequest("invalid_page", "unknown page: "+strings.TrimSpace(page))
	}
	return s.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		st.Page = p
		return nil
	})
}

func (s *sessionService) Render(ctx context.Context, sid uuid.UUID) (View, error) {
	st, err := s.store.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	return BuildView(st), nil
}

func requireAuth(st *session.State) error {
	if st == nil || !st.AuthStatus || st.User == nil {
		return apierr.Unauthorized("not_authenticated", "Please log in first")
	}
	return nil
}
