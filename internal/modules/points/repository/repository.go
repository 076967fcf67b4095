package repository

import (
	"context"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Summary is the aggregate of one user's ledger.
type Summary struct {
	MaxPoints   int
	TotalPoints int
	Events      int64
}

type PointsRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *entity.ScoreEvent) error
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) Create(ctx context.Context, tx *gorm.DB, event *entity.ScoreEvent) error {
	return database.Use(ctx, r.db, tx).Create(event).Error
}

func (r *pointsRepository) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	var row struct {
		MaxPoints   *int
		TotalPoints *int
		Events      int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.ScoreEvent{}).
		Select("MAX(points) AS max_points, SUM(points) AS total_points, COUNT(*) AS events").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	s := &Summary{Events: row.Events}
	if row.MaxPoints != nil {
		s.MaxPoints = *row.MaxPoints
	}
	if row.TotalPoints != nil {
		s.TotalPoints = *row.TotalPoints
	}
	return s, nil
}
