package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"recruitflow/screening-api/internal/config"
	"recruitflow/screening-api/internal/handlers"
	"recruitflow/screening-api/internal/logger"
	"recruitflow/screening-api/internal/repositories"
	"recruitflow/screening-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}

	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
		log,
	)
	if err != nil {
		log.Fatal("failed to initialize Qdrant", zap.Error(err))
	}

	if err := knowledgeService.InitCollection(); err != nil {
		log.Fatal("failed to initialize Qdrant collection", zap.Error(err))
	}

	var scorer services.ScoringClient
	switch cfg.Screening.Provider {
	case "openrouter":
		scorer = services.NewOpenRouterScorer(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, log)
	case "gemini":
		scorer = services.NewGeminiScorer(geminiService, log)
	default:
		log.Fatal("unknown scoring provider", zap.String("provider", cfg.Screening.Provider))
	}

	orchestrator := services.NewOrchestrator(
		scorer,
		knowledgeService,
		cfg.Screening.BatchSize,
		cfg.Screening.Concurrency,
		cfg.Screening.MaxDiagnosticLength,
		log,
	)

	manager := services.NewScreeningManager(orchestrator, sessionRepo, log)

	log.Info("services initialized",
		zap.String("provider", cfg.Screening.Provider),
		zap.Int("batch_size", cfg.Screening.BatchSize),
		zap.Int("concurrency", cfg.Screening.Concurrency),
	)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, pdfParser, cfg.Storage.MaxFileSize)
	roleHandler := handlers.NewRoleHandler(roleRepo, docRepo, knowledgeService, log)
	screeningHandler := handlers.NewScreeningHandler(manager, roleRepo, docRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Bulk Screening API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/roles", roleHandler.HandleCreateRole)
	api.Get("/roles", roleHandler.HandleListRoles)
	api.Post("/screenings", screeningHandler.HandleStartScreening)
	api.Get("/screenings/:id", screeningHandler.HandleGetScreening)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Bulk Screening API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/roles",
				"GET /api/v1/roles",
				"POST /api/v1/screenings",
				"GET /api/v1/screenings/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
