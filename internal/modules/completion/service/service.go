package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/completion/dto"
	"anoa.com/newtongame/internal/modules/completion/repository"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GameSoccer   = "soccer"
	GameRocket   = "rocket"
	GameAsteroid = "asteroid"
	GameQuiz     = "quiz"

	// QuizPassScore is the lowest quiz score that completes the quiz milestone.
	QuizPassScore = 80.0
)

type CompletionService interface {
	ReportMilestone(ctx context.Context, userID uuid.UUID, gameType string, quizScore *float64) (*dto.MilestoneResult, error)
	GetCompletion(ctx context.Context, userID uuid.UUID) (*dto.Snapshot, error)
}

type completionService struct {
	tx   database.Transactor
	repo repository.CompletionRepository
	now  func() time.Time
}

func NewCompletionService(tx database.Transactor, repo repository.CompletionRepository) CompletionService {
	return &completionService{
		tx:   tx,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ParseMilestone normalises a game type and rejects anything that is not a milestone.
func ParseMilestone(raw string) (string, error) {
	gameType := strings.ToLower(strings.TrimSpace(raw))
	switch gameType {
	case GameSoccer, GameRocket, GameAsteroid, GameQuiz:
		return gameType, nil
	case "":
		return "", apperror.InvalidInput("gameType is required")
	default:
		return "", apperror.InvalidInput("Invalid game type")
	}
}

func (s *completionService) ReportMilestone(ctx context.Context, userID uuid.UUID, gameType string, quizScore *float64) (*dto.MilestoneResult, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	gameType, err := ParseMilestone(gameType)
	if err != nil {
		return nil, err
	}
	if gameType == GameQuiz && quizScore == nil {
		return nil, apperror.InvalidInput("quizScore is required")
	}

	var result dto.MilestoneResult
	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.EnsureRow(ctx, tx, userID); err != nil {
			return err
		}
		status, err := s.repo.FindForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		switch gameType {
		case GameSoccer:
			status.SoccerCompleted = true
		case GameRocket:
			status.RocketCompleted = true
		case GameAsteroid:
			status.AsteroidCompleted = true
		case GameQuiz:
			if *quizScore < QuizPassScore {
				result.Completion = toSnapshot(status)
				return nil
			}
			status.QuizCompleted = true
			status.QuizScore = *quizScore
			result.QuizCompleted = true
		}

		if status.MilestonesDone() && !status.AllCompleted {
			now := s.now()
			status.AllCompleted = true
			status.CompletedAt = &now
		}

		if err := s.repo.Save(ctx, tx, status); err != nil {
			return err
		}
		result.Completion = toSnapshot(status)
		return nil
	})
	if err != nil {
		return nil, apperror.Internal("Error saving completion", err)
	}
	return &result, nil
}

func (s *completionService) GetCompletion(ctx context.Context, userID uuid.UUID) (*dto.Snapshot, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	status, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.Snapshot{}, nil
	}
	if err != nil {
		return nil, apperror.Internal("Error loading completion", err)
	}

	snapshot := toSnapshot(status)
	return &snapshot, nil
}

func toSnapshot(status *entity.CompletionStatus) dto.Snapshot {
	return dto.Snapshot{
		Soccer:       status.SoccerCompleted,
		Rocket:       status.RocketCompleted,
		Asteroid:     status.AsteroidCompleted,
		Quiz:         status.QuizCompleted,
		QuizScore:    status.QuizScore,
		AllCompleted: status.AllCompleted,
		CompletedAt:  status.CompletedAt,
	}
}
