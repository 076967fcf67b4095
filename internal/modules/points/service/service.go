package service

import (
	"context"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/points/dto"
	"anoa.com/newtongame/internal/modules/points/repository"
	"anoa.com/newtongame/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SourceSavePoints = "save_points"

// ScoreListener is told after a ledger append has been committed.
type ScoreListener interface {
	ScoresChanged(ctx context.Context)
}

type PointsService interface {
	RecordPoints(ctx context.Context, userID uuid.UUID, amount int) (int, error)
	// AppendTx appends inside a transaction owned by the caller. The caller
	// notifies listeners once its transaction commits.
	AppendTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int, source string) error
	TotalOrMaxPoints(ctx context.Context, userID uuid.UUID) (*dto.PointsSummary, error)
}

type pointsService struct {
	repo     repository.PointsRepository
	listener ScoreListener
}

func NewPointsService(repo repository.PointsRepository, listener ScoreListener) PointsService {
	return &pointsService{repo: repo, listener: listener}
}

func (s *pointsService) RecordPoints(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if userID == uuid.Nil {
		return 0, apperror.ErrUnauthorized
	}

	if err := s.AppendTx(ctx, nil, userID, amount, SourceSavePoints); err != nil {
		return 0, err
	}

	if s.listener != nil {
		s.listener.ScoresChanged(ctx)
	}
	return amount, nil
}

func (s *pointsService) AppendTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int, source string) error {
	event := &entity.ScoreEvent{
		UserID: userID,
		Points: amount,
		Source: source,
	}
	if err := s.repo.Create(ctx, tx, event); err != nil {
		return apperror.Internal("Error saving points", err)
	}
	return nil
}

func (s *pointsService) TotalOrMaxPoints(ctx context.Context, userID uuid.UUID) (*dto.PointsSummary, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	sum, err := s.repo.Summary(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error loading points", err)
	}

	return &dto.PointsSummary{
		MaxPoints:   sum.MaxPoints,
		TotalPoints: sum.TotalPoints,
		Events:      sum.Events,
	}, nil
}
