package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RankedUser is a user with the best single score they recorded.
type RankedUser struct {
	UserID    uuid.UUID
	Username  string
	AvatarURL *string
	Points    int
}

type LeaderboardRepository interface {
	// TopByMaxPoints ranks users by their largest score event. A non-nil since
	// only considers events recorded at or after it.
	TopByMaxPoints(ctx context.Context, limit int, since *time.Time) ([]RankedUser, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) TopByMaxPoints(ctx context.Context, limit int, since *time.Time) ([]RankedUser, error) {
	query := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.username, users.avatar_url, MAX(score_events.points) AS points").
		Joins("JOIN score_events ON score_events.user_id = users.id")

	if since != nil {
		query = query.Where("score_events.created_at >= ?", *since)
	}

	var rows []RankedUser
	err := query.
		Group("users.id, users.username, users.avatar_url").
		Order("MAX(score_events.points) DESC").
		Order("users.username ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
