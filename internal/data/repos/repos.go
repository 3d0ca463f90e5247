package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/data/repos/learning"
	"github.com/yungbote/pylearn-backend/internal/data/repos/user"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserSessionStateRepo = user.UserSessionStateRepo

type VideoLogRepo = learning.VideoLogRepo
type QuizAttemptRepo = learning.QuizAttemptRepo
type QuizSummary = learning.QuizSummary

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewUserSessionStateRepo(db *gorm.DB, log *logger.Logger) UserSessionStateRepo {
	return user.NewUserSessionStateRepo(db, log)
}

func NewVideoLogRepo(db *gorm.DB, log *logger.Logger) VideoLogRepo {
	return learning.NewVideoLogRepo(db, log)
}

func NewQuizAttemptRepo(db *gorm.DB, log *logger.Logger) QuizAttemptRepo {
	return learning.NewQuizAttemptRepo(db, log)
}
