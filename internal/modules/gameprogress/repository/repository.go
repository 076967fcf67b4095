package repository

import (
	"context"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameProgressRepository interface {
	// InsertIfAbsent creates the row unless one exists for the same key.
	// It reports whether the row was created.
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, progress *entity.GameProgress) (bool, error)
	FindForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, gameType string, level int) (*entity.GameProgress, error)
	Save(ctx context.Context, tx *gorm.DB, progress *entity.GameProgress) error
	Find(ctx context.Context, userID uuid.UUID, gameType string, level int) (*entity.GameProgress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.GameProgress, error)
}

type gameProgressRepository struct {
	db *gorm.DB
}

func NewGameProgressRepository(db *gorm.DB) GameProgressRepository {
	return &gameProgressRepository{db: db}
}

func (r *gameProgressRepository) InsertIfAbsent(ctx context.Context, tx *gorm.DB, progress *entity.GameProgress) (bool, error) {
	res := database.Use(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_type"}, {Name: "level"}},
			DoNothing: true,
		}).
		Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gameProgressRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, gameType string, level int) (*entity.GameProgress, error) {
	var progress entity.GameProgress
	err := database.Use(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND game_type = ? AND level = ?", userID, gameType, level).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *gameProgressRepository) Save(ctx context.Context, tx *gorm.DB, progress *entity.GameProgress) error {
	return database.Use(ctx, r.db, tx).Save(progress).Error
}

func (r *gameProgressRepository) Find(ctx context.Context, userID uuid.UUID, gameType string, level int) (*entity.GameProgress, error) {
	var progress entity.GameProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_type = ? AND level = ?", userID, gameType, level).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *gameProgressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.GameProgress, error) {
	var rows []entity.GameProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("game_type ASC").
		Order("level ASC").
		Find(&rows).Error
	return rows, err
}
