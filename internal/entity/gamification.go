package entity

import (
	"time"

	"github.com/google/uuid"
)

// ScoreEvent is one point-earning action. Rows are never updated or deleted.
type ScoreEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_score_user_date,priority:1;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Points    int       `gorm:"not null" json:"points"`
	Source    string    `gorm:"size:80;not null;default:'save_points'" json:"source"` // 'save_points', 'game:<type>:<level>'
	CreatedAt time.Time `gorm:"index:idx_score_user_date,priority:2;index:idx_score_date" json:"created_at"`
}

// GameProgress holds the best score for one (user, game type, level).
// BestScore never decreases and Completed never goes back to false.
type GameProgress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_progress_key,priority:1;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	GameType  string    `gorm:"size:50;uniqueIndex:idx_progress_key,priority:2;not null" json:"game_type"`
	Level     int       `gorm:"uniqueIndex:idx_progress_key,priority:3;not null" json:"level"`
	BestScore int       `gorm:"not null;default:0" json:"best_score"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CompletionStatus aggregates the four milestones of a user. One row per user.
type CompletionStatus struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User              User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SoccerCompleted   bool       `gorm:"not null;default:false" json:"soccer_completed"`
	RocketCompleted   bool       `gorm:"not null;default:false" json:"rocket_completed"`
	AsteroidCompleted bool       `gorm:"not null;default:false" json:"asteroid_completed"`
	QuizCompleted     bool       `gorm:"not null;default:false" json:"quiz_completed"`
	QuizScore         float64    `gorm:"not null;default:0" json:"quiz_score"`
	AllCompleted      bool       `gorm:"not null;default:false" json:"all_completed"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// MilestonesDone reports whether all four milestone flags are set.
func (c *CompletionStatus) MilestonesDone() bool {
	return c.SoccerCompleted && c.RocketCompleted && c.AsteroidCompleted && c.QuizCompleted
}

// Feedback is a free-text note left by a player.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
