package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, rows []*learning.QuizAttempt) ([]*learning.QuizAttempt, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.QuizAttempt, error)
	Summary(dbc dbctx.Context, userID uuid.UUID) (QuizSummary, error)
}

type QuizSummary struct {
	Attempts int64 `json:"attempts"`
	Score    int64 `json:"score"`
	Total    int64 `json:"total"`
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, rows []*learning.QuizAttempt) ([]*learning.QuizAttempt, error) {
	if len(rows) == 0 {
		return []*learning.QuizAttempt{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUser returns newest first.
func (r *quizAttemptRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.QuizAttempt, error) {
	var out []*learning.QuizAttempt
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

func (r *quizAttemptRepo) Summary(dbc dbctx.Context, userID uuid.UUID) (QuizSummary, error) {
	var s QuizSummary
	err := dbc.DB(r.db).
		Model(&learning.QuizAttempt{}).
		Select("COUNT(*) AS attempts, COALESCE(SUM(score), 0) AS score, COALESCE(SUM(total), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&s).Error
	return s, err
}
