package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	leaderboardDto "anoa.com/newtongame/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/newtongame/internal/modules/leaderboard/repository"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	TimeframeAllTime = "all_time"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"

	DefaultLimit = 10
	MaxLimit     = 50

	// UpdatesChannel carries a message every time the ledger changes.
	UpdatesChannel = "leaderboard:updates"

	cacheKeyPrefix = "leaderboard:cache:"
	cacheIndexKey  = "leaderboard:cache_keys"

	// Bumped on every ledger change. Cache keys embed it so a ranking read
	// before a change can never be served after it.
	cacheGenerationKey = "leaderboard:cache_gen"
)

type LeaderboardService interface {
	TopN(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error)
	// ScoresChanged drops cached rankings and tells live subscribers to refresh.
	ScoresChanged(ctx context.Context)
}

type leaderboardService struct {
	repo        leaderboardRepo.LeaderboardRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
	log         *logger.Logger
	group       singleflight.Group
	localGen    atomic.Int64
	now         func() time.Time
}

// NewLeaderboardService builds the ranker. A nil redisClient disables caching and live updates.
func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, redisClient *redis.Client, cacheTTL time.Duration, log *logger.Logger) LeaderboardService {
	if log == nil {
		log = logger.Nop()
	}
	return &leaderboardService{
		repo:        repo,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ClampLimit applies the default and upper bound to a requested board size.
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *leaderboardService) since(timeframe string) (*time.Time, error) {
	now := s.now()
	switch timeframe {
	case "", TimeframeAllTime:
		return nil, nil
	case TimeframeWeekly:
		t := now.AddDate(0, 0, -7)
		return &t, nil
	case TimeframeMonthly:
		t := now.AddDate(0, -1, 0)
		return &t, nil
	default:
		return nil, apperror.InvalidInput("timeframe must be one of: all_time, weekly, monthly")
	}
}

func (s *leaderboardService) TopN(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error) {
	limit = ClampLimit(limit)
	if timeframe == "" {
		timeframe = TimeframeAllTime
	}
	since, err := s.since(timeframe)
	if err != nil {
		return nil, err
	}

	key := cacheKeyPrefix + strconv.FormatInt(s.generation(ctx), 10) + ":" + timeframe + ":" + strconv.Itoa(limit)
	if entries, ok := s.readCache(ctx, key); ok {
		return entries, nil
	}

	// The shared read must outlive the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		rows, err := s.repo.TopByMaxPoints(loadCtx, limit, since)
		if err != nil {
			return nil, err
		}

		entries := make([]leaderboardDto.LeaderboardEntry, 0, len(rows))
		for i, row := range rows {
			entries = append(entries, leaderboardDto.LeaderboardEntry{
				Rank:      i + 1,
				Username:  row.Username,
				Points:    row.Points,
				AvatarURL: row.AvatarURL,
			})
		}
		s.writeCache(loadCtx, key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, apperror.Internal("Error loading leaderboard", err)
	}
	return v.([]leaderboardDto.LeaderboardEntry), nil
}

// generation returns the current cache generation. Without redis a local
// counter keeps singleflight from sharing a load across a score change.
func (s *leaderboardService) generation(ctx context.Context) int64 {
	if s.redisClient == nil {
		return s.localGen.Load()
	}
	gen, err := s.redisClient.Get(ctx, cacheGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		s.log.Warn("leaderboard cache generation read failed", "error", err)
	}
	return gen
}

func (s *leaderboardService) readCache(ctx context.Context, key string) ([]leaderboardDto.LeaderboardEntry, bool) {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return nil, false
	}

	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.Warn("leaderboard cache read failed", "key", key, "error", err)
		return nil, false
	}

	var entries []leaderboardDto.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.Warn("leaderboard cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return entries, true
}

func (s *leaderboardService) writeCache(ctx context.Context, key string, entries []leaderboardDto.LeaderboardEntry) {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, key, payload, s.cacheTTL)
	pipe.SAdd(ctx, cacheIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
}

func (s *leaderboardService) ScoresChanged(ctx context.Context) {
	s.localGen.Add(1)
	if s.redisClient == nil {
		return
	}

	if err := s.redisClient.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		s.log.Warn("leaderboard cache generation bump failed", "error", err)
	}

	keys, err := s.redisClient.SMembers(ctx, cacheIndexKey).Result()
	if err != nil {
		s.log.Warn("leaderboard cache index read failed", "error", err)
	}
	keys = append(keys, cacheIndexKey)
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("leaderboard cache invalidation failed", "error", err)
	}

	payload := fmt.Sprintf("%d", s.now().UnixMilli())
	if err := s.redisClient.Publish(ctx, UpdatesChannel, payload).Err(); err != nil {
		s.log.Warn("leaderboard update publish failed", "error", err)
	}
}
