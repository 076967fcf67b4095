package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/gameprogress/dto"
	"anoa.com/newtongame/internal/modules/gameprogress/repository"
	pointsService "anoa.com/newtongame/internal/modules/points/service"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxGameTypeLength = 50

type GameProgressService interface {
	SubmitGameScore(ctx context.Context, userID uuid.UUID, in dto.GameScoreSubmission) (*dto.SubmitResult, error)
	GetGameScore(ctx context.Context, userID uuid.UUID, gameType string, level int) (*dto.GameScore, error)
	ListGameScores(ctx context.Context, userID uuid.UUID) ([]dto.GameProgressResponse, error)
}

type gameProgressService struct {
	tx       database.Transactor
	repo     repository.GameProgressRepository
	points   pointsService.PointsService
	listener pointsService.ScoreListener
}

func NewGameProgressService(
	tx database.Transactor,
	repo repository.GameProgressRepository,
	points pointsService.PointsService,
	listener pointsService.ScoreListener,
) GameProgressService {
	return &gameProgressService{
		tx:       tx,
		repo:     repo,
		points:   points,
		listener: listener,
	}
}

// NormalizeGameType trims and lower-cases a game type and checks its length.
func NormalizeGameType(raw string) (string, error) {
	gameType := strings.ToLower(strings.TrimSpace(raw))
	if gameType == "" {
		return "", apperror.InvalidInput("gameType is required")
	}
	if len(gameType) > maxGameTypeLength {
		return "", apperror.InvalidInput(fmt.Sprintf("gameType must be at most %d characters", maxGameTypeLength))
	}
	return gameType, nil
}

func (s *gameProgressService) SubmitGameScore(ctx context.Context, userID uuid.UUID, in dto.GameScoreSubmission) (*dto.SubmitResult, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	gameType, err := NormalizeGameType(in.GameType)
	if err != nil {
		return nil, err
	}
	if in.Score < 0 {
		return nil, apperror.InvalidInput("score must not be negative")
	}

	var result dto.SubmitResult
	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		progress := &entity.GameProgress{
			UserID:    userID,
			GameType:  gameType,
			Level:     in.Level,
			BestScore: in.Score,
			Completed: in.Completed,
		}
		created, err := s.repo.InsertIfAbsent(ctx, tx, progress)
		if err != nil {
			return err
		}

		delta := in.Score
		if !created {
			progress, err = s.repo.FindForUpdate(ctx, tx, userID, gameType, in.Level)
			if err != nil {
				return err
			}

			delta = 0
			if in.Score > progress.BestScore {
				delta = in.Score - progress.BestScore
				progress.BestScore = in.Score
			}
			if in.Completed {
				progress.Completed = true
			}
			if err := s.repo.Save(ctx, tx, progress); err != nil {
				return err
			}
		}

		if delta > 0 {
			source := fmt.Sprintf("game:%s:%d", gameType, in.Level)
			if err := s.points.AppendTx(ctx, tx, userID, delta, source); err != nil {
				return err
			}
		}

		result = dto.SubmitResult{
			BestScore:    progress.BestScore,
			PointsToAdd:  delta,
			WasNewRecord: delta > 0,
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal("Error saving game score", err)
	}

	if result.PointsToAdd > 0 && s.listener != nil {
		s.listener.ScoresChanged(ctx)
	}
	return &result, nil
}

func (s *gameProgressService) GetGameScore(ctx context.Context, userID uuid.UUID, gameType string, level int) (*dto.GameScore, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	gameType, err := NormalizeGameType(gameType)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.Find(ctx, userID, gameType, level)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.GameScore{}, nil
	}
	if err != nil {
		return nil, apperror.Internal("Error loading game score", err)
	}

	return &dto.GameScore{
		BestScore: progress.BestScore,
		Completed: progress.Completed,
	}, nil
}

func (s *gameProgressService) ListGameScores(ctx context.Context, userID uuid.UUID) ([]dto.GameProgressResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error loading game scores", err)
	}

	scores := make([]dto.GameProgressResponse, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, dto.GameProgressResponse{
			GameType:  row.GameType,
			Level:     row.Level,
			BestScore: row.BestScore,
			Completed: row.Completed,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return scores, nil
}
