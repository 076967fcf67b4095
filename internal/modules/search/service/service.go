package service

import (
	"context"
	"strings"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/search/dto"
	userRepo "anoa.com/newtongame/internal/modules/user/repository"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/logger"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 25
)

type SearchService interface {
	// IndexPlayer pushes the player to the search index. Failures are logged only.
	IndexPlayer(ctx context.Context, user *entity.User)
	SearchPlayers(ctx context.Context, query string, limit int) ([]dto.PlayerResult, error)
}

type searchService struct {
	index    PlayerIndex
	userRepo userRepo.UserRepository
	log      *logger.Logger
}

// NewSearchService builds the player search. A nil index makes every search
// go straight to the database.
func NewSearchService(index PlayerIndex, userRepo userRepo.UserRepository, log *logger.Logger) SearchService {
	if log == nil {
		log = logger.Nop()
	}
	return &searchService{index: index, userRepo: userRepo, log: log}
}

func (s *searchService) IndexPlayer(ctx context.Context, user *entity.User) {
	if s.index == nil || user == nil {
		return
	}
	if err := s.index.IndexPlayer(user); err != nil {
		s.log.Warn("failed to index player", "user_id", user.ID, "error", err)
	}
}

func (s *searchService) SearchPlayers(ctx context.Context, query string, limit int) ([]dto.PlayerResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.InvalidInput("q is required")
	}
	if limit < 1 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.index != nil {
		results, err := s.index.SearchPlayers(query, limit)
		if err == nil {
			return results, nil
		}
		s.log.Warn("meilisearch query failed, falling back to database", "error", err)
	}

	users, err := s.userRepo.SearchByUsername(ctx, query, limit)
	if err != nil {
		return nil, apperror.Internal("Error searching players", err)
	}

	results := make([]dto.PlayerResult, 0, len(users))
	for _, u := range users {
		r := dto.PlayerResult{ID: u.ID.String(), Username: u.Username}
		if u.AvatarURL != nil {
			r.AvatarURL = *u.AvatarURL
		}
		results = append(results, r)
	}
	return results, nil
}
