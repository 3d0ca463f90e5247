package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/pylearn-backend/internal/domain/user"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type UserSessionStateRepo interface {
	GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) (*user.UserSessionState, error)
	Upsert(dbc dbctx.Context, sessionID uuid.UUID, userID *uuid.UUID, state []byte) error
	Delete(dbc dbctx.Context, sessionID uuid.UUID) error
	DeleteIdleSince(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type userSessionStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSessionStateRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionStateRepo {
	return &userSessionStateRepo{
		db:  db,
		log: baseLog.With("repo", "UserSessionStateRepo"),
	}
}

func (r *userSessionStateRepo) GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) (*user.UserSessionState, error) {
	if sessionID == uuid.Nil {
		return nil, nil
	}
	var row user.UserSessionState
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.SessionID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userSessionStateRepo) Upsert(dbc dbctx.Context, sessionID uuid.UUID, userID *uuid.UUID, state []byte) error {
	if sessionID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row := &user.UserSessionState{
		SessionID:  sessionID,
		UserID:     userID,
		State:      datatypes.JSON(state),
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "state", "last_seen_at", "updated_at"}),
		}).
		Create(row).Error
}

func (r *userSessionStateRepo) Delete(dbc dbctx.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Delete(&user.UserSessionState{}).Error
}

func (r *userSessionStateRepo) DeleteIdleSince(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Where("last_seen_at < ?", cutoff).
		Delete(&user.UserSessionState{})
	return res.RowsAffected, res.Error
}
