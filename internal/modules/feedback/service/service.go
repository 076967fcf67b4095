package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/feedback/dto"
	"anoa.com/newtongame/internal/modules/feedback/repository"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const (
	maxNoteLength = 10000
	rateLimitKey  = "feedback"
)

type FeedbackService interface {
	CreateFeedback(ctx context.Context, userID uuid.UUID, note string) (*dto.FeedbackResponse, error)
	ListFeedback(ctx context.Context, userID uuid.UUID) ([]dto.FeedbackResponse, error)
	DeleteFeedback(ctx context.Context, userID uuid.UUID, id uint) error
}

type feedbackService struct {
	repo      repository.FeedbackRepository
	limiter   *ratelimit.Limiter
	window    time.Duration
	sanitizer *bluemonday.Policy
}

func NewFeedbackService(repo repository.FeedbackRepository, limiter *ratelimit.Limiter, window time.Duration) FeedbackService {
	return &feedbackService{
		repo:      repo,
		limiter:   limiter,
		window:    window,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// cleanNote strips markup and collapses whitespace. Entities are decoded
// before sanitizing so encoded tags are stripped too; the stored text is
// the sanitizer's HTML-escaped output.
func (s *feedbackService) cleanNote(note string) string {
	note = html.UnescapeString(note)
	note = strings.ReplaceAll(note, "<br>", " ")
	note = strings.ReplaceAll(note, "</p>", " ")
	clean := s.sanitizer.Sanitize(note)
	return strings.Join(strings.Fields(clean), " ")
}

func (s *feedbackService) CreateFeedback(ctx context.Context, userID uuid.UUID, note string) (*dto.FeedbackResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	note = s.cleanNote(note)
	if note == "" {
		return nil, apperror.InvalidInput("Note too short!")
	}
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, apperror.InvalidInput("Note too long!")
	}

	allowed, err := s.limiter.Allow(ctx, userID, rateLimitKey, s.window)
	if err != nil {
		return nil, apperror.Internal("Error saving feedback", err)
	}
	if !allowed {
		retry, _ := s.limiter.RetryAfter(ctx, userID, rateLimitKey)
		return nil, &ratelimit.ExceededError{RetryAfter: retry}
	}

	feedback := &entity.Feedback{UserID: userID, Content: note}
	if err := s.repo.Create(ctx, feedback); err != nil {
		_ = s.limiter.Clear(ctx, userID, rateLimitKey)
		return nil, apperror.Internal("Error saving feedback", err)
	}

	return toResponse(feedback), nil
}

func (s *feedbackService) ListFeedback(ctx context.Context, userID uuid.UUID) ([]dto.FeedbackResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error loading feedback", err)
	}

	out := make([]dto.FeedbackResponse, 0, len(notes))
	for i := range notes {
		out = append(out, *toResponse(&notes[i]))
	}
	return out, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, userID uuid.UUID, id uint) error {
	if userID == uuid.Nil {
		return apperror.ErrUnauthorized
	}

	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Note not found")
		}
		return apperror.Internal("Error deleting feedback", err)
	}
	if feedback.UserID != userID {
		return apperror.Forbidden("You can only delete your own notes")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal("Error deleting feedback", err)
	}
	return nil
}

func toResponse(f *entity.Feedback) *dto.FeedbackResponse {
	return &dto.FeedbackResponse{
		ID:        f.ID,
		Note:      f.Content,
		CreatedAt: f.CreatedAt,
	}
}
