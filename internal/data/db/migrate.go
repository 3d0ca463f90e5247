package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// identity + sessions
		&user.User{},
		&user.UserSessionState{},

		// activity
		&learning.VideoLog{},
		&learning.QuizAttempt{},
	)
}
