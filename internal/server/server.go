package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/newtongame/internal/config"
	"anoa.com/newtongame/internal/middleware"
	"anoa.com/newtongame/pkg/database"
	"anoa.com/newtongame/pkg/logger"
	"anoa.com/newtongame/pkg/ratelimit"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/storage"
	"anoa.com/newtongame/pkg/tracing"

	completionHttp "anoa.com/newtongame/internal/modules/completion/delivery/http"
	completionRepo "anoa.com/newtongame/internal/modules/completion/repository"
	completionService "anoa.com/newtongame/internal/modules/completion/service"

	feedbackHttp "anoa.com/newtongame/internal/modules/feedback/delivery/http"
	feedbackRepo "anoa.com/newtongame/internal/modules/feedback/repository"
	feedbackService "anoa.com/newtongame/internal/modules/feedback/service"

	gameProgressHttp "anoa.com/newtongame/internal/modules/gameprogress/delivery/http"
	gameProgressRepo "anoa.com/newtongame/internal/modules/gameprogress/repository"
	gameProgressService "anoa.com/newtongame/internal/modules/gameprogress/service"

	leaderboardHttp "anoa.com/newtongame/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/newtongame/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/newtongame/internal/modules/leaderboard/service"

	pointsHttp "anoa.com/newtongame/internal/modules/points/delivery/http"
	pointsRepo "anoa.com/newtongame/internal/modules/points/repository"
	pointsService "anoa.com/newtongame/internal/modules/points/service"

	searchHttp "anoa.com/newtongame/internal/modules/search/delivery/http"
	searchService "anoa.com/newtongame/internal/modules/search/service"

	userHttp "anoa.com/newtongame/internal/modules/user/delivery/http"
	userRepo "anoa.com/newtongame/internal/modules/user/repository"
	userService "anoa.com/newtongame/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	log         *logger.Logger
}

// NewServer wires every module onto one gin engine. redisClient may be nil;
// caching, rate limiting and live leaderboard updates are then disabled.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	origins := parseOrigins(cfg.AllowedOrigins)
	transactor := database.NewTransactor(db)

	userRepository := userRepo.NewUserRepository(db)

	var imageStorage storage.ImageStorage
	if cfg.CloudinaryURL != "" {
		s, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			log.Warn("cloudinary disabled", "error", err)
		} else {
			imageStorage = s
		}
	}

	var playerIndex searchService.PlayerIndex
	if host := strings.TrimSpace(cfg.MeiliSearchHost); host != "" {
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		playerIndex = searchService.NewMeiliPlayerIndex(meiliClient, log)
	}
	searchSvc := searchService.NewSearchService(playerIndex, userRepository, log)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	authSvc := userService.NewAuthService(userRepository, imageStorage, searchSvc, userService.Options{
		Secret:       cfg.JWTSecret,
		TokenTTL:     cfg.JWTTTL,
		AvatarFolder: cfg.CloudinaryUploadFolder,
	}, log)
	authHandler := userHttp.NewAuthHandler(authSvc)

	leaderboardSvc := leaderboardService.NewLeaderboardService(
		leaderboardRepo.NewLeaderboardRepository(db), redisClient, cfg.LeaderboardCacheTTL, log,
	)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc, redisClient, originChecker(origins), log)

	pointsSvc := pointsService.NewPointsService(pointsRepo.NewPointsRepository(db), leaderboardSvc)
	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc)

	gameProgressSvc := gameProgressService.NewGameProgressService(
		transactor, gameProgressRepo.NewGameProgressRepository(db), pointsSvc, leaderboardSvc,
	)
	gameProgressHandler := gameProgressHttp.NewGameProgressHandler(gameProgressSvc)

	completionSvc := completionService.NewCompletionService(transactor, completionRepo.NewCompletionRepository(db))
	completionHandler := completionHttp.NewCompletionHandler(completionSvc)

	feedbackSvc := feedbackService.NewFeedbackService(
		feedbackRepo.NewFeedbackRepository(db), ratelimit.New(redisClient), cfg.RateLimitFeedback,
	)
	feedbackHandler := feedbackHttp.NewFeedbackHandler(feedbackSvc)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, origins)

	router.Use(gin.Recovery())
	if cfg.OtelEnabled {
		router.Use(tracing.Middleware(cfg.OtelServiceName))
	}
	router.Use(middleware.RequestLogger(log))

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	// Public routes (no auth required)
	router.GET("/healthz", func(c *gin.Context) { response.OK(c, gin.H{}) })
	router.POST("/sign-up", authHandler.SignUp)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	router.GET("/leaderboard/ws", leaderboardHandler.Live)

	// Protected routes
	protected := router.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/check-session", authHandler.CheckSession)
		protected.PUT("/profile/avatar", authHandler.UpdateAvatar)

		protected.POST("/save-points", pointsHandler.SavePoints)
		protected.GET("/get-points", pointsHandler.GetPoints)

		protected.POST("/save-game-score", gameProgressHandler.SaveGameScore)
		protected.GET("/get-game-score", gameProgressHandler.GetGameScore)
		protected.GET("/game-scores", gameProgressHandler.ListGameScores)

		protected.POST("/save-completion", completionHandler.SaveCompletion)
		protected.GET("/get-completion", completionHandler.GetCompletion)

		protected.POST("/feedback", feedbackHandler.CreateFeedback)
		protected.GET("/feedback", feedbackHandler.ListFeedback)
		protected.DELETE("/feedback/:id", feedbackHandler.DeleteFeedback)

		protected.GET("/players/search", searchHandler.SearchPlayers)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("http server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return origins
}

// originChecker lets websocket upgrades through for the CORS origins only.
// Requests without an Origin header are not from a browser and are allowed.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
