package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserSessionState persists the per-browser session blob keyed by the session id
// carried in the session token. UserID is set once the session logs in.
type UserSessionState struct {
	SessionID uuid.UUID  `gorm:"type:uuid;primaryKey" json:"session_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	State datatypes.JSON `gorm:"column:state" json:"state"`

	LastSeenAt time.Time `gorm:"column:last_seen_at;not null;index" json:"last_seen_at"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserSessionState) TableName() string { return "user_session_state" }
