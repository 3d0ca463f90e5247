package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/user"
)

// VideoLog records one successfully generated tutorial.
type VideoLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Topic       string     `gorm:"not null;column:topic" json:"topic"`
	ArtifactKey string     `gorm:"column:artifact_key" json:"artifact_key"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (VideoLog) TableName() string { return "video_log" }

func (v *VideoLog) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
