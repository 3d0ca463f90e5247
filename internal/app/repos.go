package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/data/repos"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	UserSessionState repos.UserSessionStateRepo
	VideoLog         repos.VideoLogRepo
	QuizAttempt      repos.QuizAttemptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserSessionState: repos.NewUserSessionStateRepo(db, log),
		VideoLog:         repos.NewVideoLogRepo(db, log),
		QuizAttempt:      repos.NewQuizAttemptRepo(db, log),
	}
}
