package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/user"
)

type QuizAttempt struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Topic     string         `gorm:"not null;column:topic" json:"topic"`
	Score     int            `gorm:"not null;column:score" json:"score"`
	Total     int            `gorm:"not null;column:total" json:"total"`
	Detail    datatypes.JSON `gorm:"column:detail" json:"detail"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (q *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuestionResult is one entry of QuizAttempt.Detail.
type QuestionResult struct {
	Question   string `json:"question"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty"`
	Selected   string `json:"selected"`
	Correct    string `json:"correct"`
	IsCorrect  bool   `json:"is_correct"`
}
