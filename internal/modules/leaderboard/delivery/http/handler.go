package http

import (
	"net/http"
	"strconv"

	leaderboardService "anoa.com/newtongame/internal/modules/leaderboard/service"
	"anoa.com/newtongame/pkg/logger"
	"anoa.com/newtongame/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type LeaderboardHandler struct {
	service     leaderboardService.LeaderboardService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	log         *logger.Logger
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService, redisClient *redis.Client, checkOrigin func(r *http.Request) bool, log *logger.Logger) *LeaderboardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &LeaderboardHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	timeframe := c.Query("timeframe") // "all_time", "monthly", "weekly"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.service.TopN(c.Request.Context(), limit, timeframe)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"leaderboard": entries})
}

type liveFrame struct {
	Status      int         `json:"status"`
	Leaderboard interface{} `json:"leaderboard"`
}

// Live streams the board over a WebSocket and re-sends it whenever
// a score update is published.
func (h *LeaderboardHandler) Live(c *gin.Context) {
	timeframe := c.Query("timeframe")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	// Validate before upgrading so bad params still get a JSON error.
	if _, err := h.service.TopN(c.Request.Context(), limit, timeframe); err != nil {
		response.ResponseError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	send := func() bool {
		entries, err := h.service.TopN(ctx, limit, timeframe)
		if err != nil {
			h.log.Warn("live leaderboard refresh failed", "error", err)
			return true
		}
		if err := conn.WriteJSON(liveFrame{Status: http.StatusOK, Leaderboard: entries}); err != nil {
			return false
		}
		return true
	}

	// Subscribe first so a change committed while the first frame is
	// being built still triggers a refresh.
	var updates <-chan *redis.Message
	if h.redisClient != nil {
		pubsub := h.redisClient.Subscribe(ctx, leaderboardService.UpdatesChannel)
		defer pubsub.Close()

		if _, err := pubsub.Receive(ctx); err != nil {
			h.log.Warn("leaderboard subscribe failed", "error", err)
			return
		}
		updates = pubsub.Channel()
	}

	if !send() {
		return
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
			if !send() {
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
