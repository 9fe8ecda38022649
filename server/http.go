package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"stream-service/config"
	"stream-service/constant"
	"stream-service/handler"
	"stream-service/middleware"
	"stream-service/pkg/rabbitmq"
	"stream-service/pkg/token"
	"stream-service/pkg/ws"
	"stream-service/repository"
	"stream-service/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	signer, err := token.NewSigner(cfg.Stream.APIKey, cfg.Stream.APISecret)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("stream signer misconfigured")
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewRabbitMQConn")
	}

	publisher, err := rabbitmq.NewPublisher(conn, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewPublisher")
	}

	repo := repository.NewRepo(cfg.DB)
	hub := ws.NewHub()
	streamService := service.NewStreamService(repo, signer, publisher)
	chatService := service.NewChatService(repo, publisher)
	coachService := service.NewCoachVideoService(repo, cfg.Storage, cfg.MinIOBucket, cfg.MinIOPublicURL, publisher)

	serviceDeps := handler.ServiceDependencies{
		StreamService: streamService,
		ChatService:   chatService,
		CoachService:  coachService,
		Hub:           hub,
	}

	// Relay change events from the stream exchange into local feeds.
	eventConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, handler.EventHandler)
	go func() {
		err := eventConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Event consumer error")
		}
	}()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))
	addHealth(r)
	registerRoutes(r, signer, serviceDeps)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func registerRoutes(r *gin.Engine, signer *token.Signer, deps handler.ServiceDependencies) {
	streamHandler := handler.NewStreamHandler(deps.StreamService)
	chatHandler := handler.NewChatHandler(deps.ChatService, deps.Hub, signer)
	coachHandler := handler.NewCoachHandler(deps.CoachService)

	// Websocket dials carry the credential as a query parameter, so the
	// subscribe route stays outside the header middleware.
	r.GET("/ws/chat", chatHandler.Subscribe)

	api := r.Group("/api")
	api.Use(middleware.Auth(signer))

	api.POST("/stream-management", streamHandler.Manage)
	api.GET("/streams", streamHandler.ListActive)
	api.GET("/streams/:id/messages", chatHandler.History)
	api.POST("/streams/:id/messages", chatHandler.Send)

	api.GET("/coach/videos/live", coachHandler.ListLive)
	api.POST("/coach/videos", coachHandler.Upload)
	api.GET("/coach/videos", coachHandler.List)
	api.PATCH("/coach/videos/:id/live", coachHandler.GoLive)
	api.PATCH("/coach/videos/:id/end", coachHandler.EndLive)
	api.DELETE("/coach/videos/:id", coachHandler.Delete)
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
