package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/audit"
	"github.com/siskadev/siska-bot/internal/config"
	"github.com/siskadev/siska-bot/internal/directory"
	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/gateway"
	"github.com/siskadev/siska-bot/internal/notifier"
	"github.com/siskadev/siska-bot/internal/report"
	"github.com/siskadev/siska-bot/internal/router"
	"github.com/siskadev/siska-bot/internal/storage"
	"github.com/siskadev/siska-bot/internal/store"
	"github.com/siskadev/siska-bot/internal/webhook"
	"github.com/siskadev/siska-bot/internal/worker"
	"github.com/siskadev/siska-bot/pkg/database"
	"github.com/siskadev/siska-bot/pkg/utils"
)

func main() {
	// Load .env before the config layer reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SisKA bot",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Audit database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Employee directory; an empty directory would silently route every
	// employee to the helpdesk, so a bad load is fatal.
	dir, err := directory.Load(cfg.Directory.Path, logger)
	if err != nil {
		logger.Fatal("Failed to load employee directory", zap.Error(err))
	}

	auditRepo := audit.NewRepository(db, logger)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:  cfg.Gateway.BaseURL,
		APIToken: cfg.Gateway.APIToken,
		Timeout:  cfg.Gateway.Timeout,
	}, logger)

	notif := notifier.New(gatewayClient, auditRepo, notifier.Config{
		TypingDelayMin: cfg.Bot.TypingDelayMin,
		TypingDelayMax: cfg.Bot.TypingDelayMax,
	}, logger)

	mediaStore := storage.NewLocalMediaStore(cfg.Storage.MediaDir, logger)

	reportGenerator, err := report.NewGenerator(report.Config{
		TemplatePath: cfg.Report.TemplatePath,
		OutputDir:    cfg.Report.OutputDir,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize report generator", zap.Error(err))
	}

	stores := store.NewStores()

	rt := router.New(router.Config{
		HelpdeskGroupID: chat.ParticipantID(cfg.Bot.HelpdeskGroupID),
		LeaveFormURL:    cfg.Bot.LeaveFormURL,
	}, dir, stores, notif, gatewayClient, mediaStore, reportGenerator, auditRepo, logger)

	queue := worker.NewInboundQueue(rt, func(msg chat.Message) {
		notif.Send(msg.From, router.MsgSystemError)
	}, cfg.Bot.QueueBuffer, logger)

	workers := worker.NewManager(logger)
	workers.Register(queue)
	if err := workers.StartAll(context.Background()); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	webhookVerifier := webhook.NewVerifier(cfg.Gateway.WebhookToken, logger)
	webhookHandler := webhook.NewHandler(webhookVerifier, queue, logger)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(logger))
	engine.Use(corsMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "siska-bot",
			"employees": dir.Size(),
			"time":      time.Now().Format(time.RFC3339),
		})
	})

	engine.POST("/webhook/message", webhookHandler.Handle)

	// Pending items have no timeout, so expose how many there are and how
	// long the oldest has waited.
	api := engine.Group("/api/v1")
	{
		api.GET("/pending", func(c *gin.Context) {
			approvalAge, _ := stores.Approvals.OldestAge()
			forwardAge, _ := stores.Forwards.OldestAge()
			c.JSON(http.StatusOK, gin.H{
				"pending_approvals":   stores.Approvals.Len(),
				"oldest_approval_sec": int(approvalAge.Seconds()),
				"pending_forwards":    stores.Forwards.Len(),
				"oldest_forward_sec":  int(forwardAge.Seconds()),
				"queue_depth":         queue.Len(),
			})
		})
		api.GET("/flows/:id", func(c *gin.Context) {
			id := chat.ParticipantID(c.Param("id"))
			if req, ok := stores.Requests.Get(id); ok {
				c.JSON(http.StatusOK, gin.H{
					"domain": "request",
					"step":   req.Step.String(),
					"kind":   req.Kind.String(),
				})
				return
			}
			if hd, ok := stores.Helpdesks.Get(id); ok {
				c.JSON(http.StatusOK, gin.H{
					"domain": "helpdesk",
					"step":   hd.Step.String(),
				})
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "no active flow"})
		})
		api.GET("/audit/:channel", func(c *gin.Context) {
			limit := 50
			if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
				limit = v
			}
			entries, err := auditRepo.RecentByChannel(c.Request.Context(), c.Param("channel"), limit)
			if err != nil {
				logger.Error("Failed to read audit log", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audit log"})
				return
			}
			out := make([]gin.H, 0, len(entries))
			for _, e := range entries {
				out = append(out, gin.H{
					"direction":  string(e.Direction),
					"body":       e.Body,
					"created_at": e.CreatedAt.Format(time.RFC3339),
				})
			}
			c.JSON(http.StatusOK, gin.H{
				"channel": c.Param("channel"),
				"entries": out,
			})
		})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workers.StopAll()

	logger.Info("Server exited successfully")
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
