package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/data/repos"
	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/platform/apierr"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

const defaultProgressLimit = 20

type Progress struct {
	UserID     uuid.UUID               `json:"user_id"`
	VideoCount int64                   `json:"video_count"`
	Videos     []*learning.VideoLog    `json:"videos"`
	Attempts   []*learning.QuizAttempt `json:"attempts"`
	Summary    repos.QuizSummary       `json:"summary"`
}

type ActivityService interface {
	LogVideoWatched(ctx context.Context, userID uuid.UUID, topic, artifactKey string) error
	LogQuizAttempt(ctx context.Context, userID uuid.UUID, topic string, score, total int, detail []learning.QuestionResult) error
	Progress(ctx context.Context, userID uuid.UUID, limit int) (*Progress, error)
}

type activityService struct {
	db          *gorm.DB
	log         *logger.Logger
	videoLogs   repos.VideoLogRepo
	quizAttempt repos.QuizAttemptRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, videoLogs repos.VideoLogRepo, quizAttempts repos.QuizAttemptRepo) ActivityService {
	return &activityService{
		db:          db,
		log:         log.With("service", "ActivityService"),
		videoLogs:   videoLogs,
		quizAttempt: quizAttempts,
	}
}

func (s *activityService) LogVideoWatched(ctx context.Context, userID uuid.UUID, topic, artifactKey string) error {
	if userID == uuid.Nil {
		return apierr.Unauthorized("not_authenticated", "Please log in first")
	}
	_, err := s.videoLogs.Create(dbctx.Context{Ctx: ctx}, []*learning.VideoLog{{
		UserID:      userID,
		Topic:       strings.TrimSpace(topic),
		ArtifactKey: artifactKey,
	}})
	if err != nil {
		return fmt.Errorf("log video watched: %w", err)
	}
	s.log.Debug("video logged", "user_id", userID, "topic", topic)
	return nil
}

func (s *activityService) LogQuizAttempt(ctx context.Context, userID uuid.UUID, topic string, score, total int, detail []learning.QuestionResult) error {
	if userID == uuid.Nil {
		return apierr.Unauthorized("not_authenticated", "Please log in first")
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode quiz detail: %w", err)
	}
	_, err = s.quizAttempt.Create(dbctx.Context{Ctx: ctx}, []*learning.QuizAttempt{{
		UserID: userID,
		Topic:  strings.TrimSpace(topic),
		Score:  score,
		Total:  total,
		Detail: datatypes.JSON(raw),
	}})
	if err != nil {
		return fmt.Errorf("log quiz attempt: %w", err)
	}
	s.log.Debug("quiz attempt logged", "user_id", userID, "topic", topic, "score", score, "total", total)
	return nil
}

func (s *activityService) Progress(ctx context.Context, userID uuid.UUID, limit int) (*Progress, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not_authenticated", "Please log in first")
	}
	if limit <= 0 {
		limit = defaultProgressLimit
	}
	out := &Progress{UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		if out.Videos, err = s.videoLogs.ListByUser(dbc, userID, limit); err != nil {
			return err
		}
		if out.VideoCount, err = s.videoLogs.CountByUser(dbc, userID); err != nil {
			return err
		}
		if out.Attempts, err = s.quizAttempt.ListByUser(dbc, userID, limit); err != nil {
			return err
		}
		out.Summary, err = s.quizAttempt.Summary(dbc, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if out.Videos == nil {
		out.Videos = []*learning.VideoLog{}
	}
	if out.Attempts == nil {
		out.Attempts = []*learning.QuizAttempt{}
	}
	return out, nil
}
