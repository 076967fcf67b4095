package repository

import (
	"context"

	"anoa.com/newtongame/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Feedback, error)
	FindByID(ctx context.Context, id uint) (*entity.Feedback, error)
	Delete(ctx context.Context, id uint) error
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Feedback, error) {
	var notes []entity.Feedback
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error
	return notes, err
}

func (r *feedbackRepository) FindByID(ctx context.Context, id uint) (*entity.Feedback, error) {
	var feedback entity.Feedback
	if err := r.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Feedback{}, id).Error
}
