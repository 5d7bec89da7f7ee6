package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/TuneScotty/drawit-server/auth"
	"github.com/TuneScotty/drawit-server/config"
	"github.com/TuneScotty/drawit-server/crypto"
	"github.com/TuneScotty/drawit-server/game"
	"github.com/TuneScotty/drawit-server/migrations"
	"github.com/TuneScotty/drawit-server/pubsub"
	"github.com/TuneScotty/drawit-server/storage"
	"github.com/TuneScotty/drawit-server/words"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	var (
		users     auth.UserRepo
		store     game.StateStore
		wordPool  game.WordSource
		closeRepo func()
	)

	if cfg.PostgresURL != "" {
		if err := migrations.Migrate(cfg.PostgresURL); err != nil {
			log.Fatal(err)
		}
		pgRepo, err := storage.NewPostgresRepo(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		users, store = pgRepo, pgRepo
		// session goroutines pull from the prefetched buffer, never the
		// database directly
		pool := words.NewPrefetched(pgRepo, 64)
		wordPool = pool
		closeRepo = func() {
			pool.Close()
			pgRepo.Close()
		}
		logger.Info("storage: postgres")
	} else {
		memRepo := storage.NewMemoryRepo()
		users, store = memRepo, memRepo
		wordPool = words.NewEmbeddedSource(uint64(os.Getpid()))
		closeRepo = func() {}
		logger.Info("storage: in-memory")
	}
	defer closeRepo()

	tokenManager := crypto.NewJWTManager(cfg.JWTKey, cfg.TokenAge)
	authHandler := auth.NewHandler(users, tokenManager, cfg.TokenAge, logger)

	broker := pubsub.NewBroker()
	directory := game.NewDirectory(game.DefaultConfig(), wordPool, broker, store, game.NewPeriodicTickerFactory(), logger)
	gameHandler := game.NewHandler(directory, game.DefaultConfig(), logger)

	r := CreateServer(cfg.AllowedOrigins)

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/guest", authHandler.GuestLoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
	}

	{
		sessionGroup := r.Group("/sessions")
		sessionGroup.Use(authHandler.RequireAuthMiddleware())

		sessionGroup.POST("", gameHandler.CreateSessionHandler)
		sessionGroup.GET("", gameHandler.ListSessionsHandler)
		sessionGroup.GET("/:id/ws", gameHandler.AttachSessionHandler)
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
