package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type VideoLogRepo interface {
	Create(dbc dbctx.Context, rows []*learning.VideoLog) ([]*learning.VideoLog, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.VideoLog, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type videoLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoLogRepo(db *gorm.DB, baseLog *logger.Logger) VideoLogRepo {
	return &videoLogRepo{db: db, log: baseLog.With("repo", "VideoLogRepo")}
}

func (r *videoLogRepo) Create(dbc dbctx.Context, rows []*learning.VideoLog) ([]*learning.VideoLog, error) {
	if len(rows) == 0 {
		return []*learning.VideoLog{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUser returns newest first.
func (r *videoLogRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.VideoLog, error) {
	var out []*learning.VideoLog
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoLogRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&learning.VideoLog{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}
