package repository

import (
	"context"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository interface {
	// EnsureRow creates the all-false row for userID unless it already exists.
	EnsureRow(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	FindForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*entity.CompletionStatus, error)
	Save(ctx context.Context, tx *gorm.DB, status *entity.CompletionStatus) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.CompletionStatus, error)
}

type completionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) EnsureRow(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return database.Use(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&entity.CompletionStatus{UserID: userID}).Error
}

func (r *completionRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*entity.CompletionStatus, error) {
	var status entity.CompletionStatus
	err := database.Use(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *completionRepository) Save(ctx context.Context, tx *gorm.DB, status *entity.CompletionStatus) error {
	return database.Use(ctx, r.db, tx).Save(status).Error
}

func (r *completionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.CompletionStatus, error) {
	var status entity.CompletionStatus
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}
