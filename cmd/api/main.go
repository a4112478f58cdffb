package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/ocr"
	"alfredoptarigan/resume-analyzer/internal/ocr/mupdf"
	"alfredoptarigan/resume-analyzer/internal/ocr/tesseract"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
	"alfredoptarigan/resume-analyzer/internal/views"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	resumeRepo := repositories.NewResumeRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize extraction services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	extractor := services.NewTextExtractor(
		services.NewPDFParserService(),
		services.NewDocxParserService(),
		tesseract.NewEngine(),
		mupdf.NewRenderer(),
		ocr.Options{
			Languages: cfg.OCR.Languages,
			DPI:       cfg.OCR.DPI,
			MinWidth:  cfg.OCR.MinWidth,
		},
	)
	log.Println("✅ Extraction services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Printf("✅ Gemini AI initialized successfully (model %s)", geminiService.ModelName())

	// Initialize Qdrant (optional)
	var retriever services.ContextRetriever
	if cfg.Qdrant.URL != "" {
		qdrantService, err := services.NewQdrantService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}

		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		retriever = services.NewContextRetriever(geminiService, qdrantService)
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  QDRANT_URL not set, reference retrieval disabled")
	}

	// Initialize upload archive (optional)
	archiveService, err := services.NewArchiveService(ctx, cfg.Archive)
	if err != nil {
		log.Fatalf("❌ Failed to initialize archive: %v", err)
	}
	if archiveService.Enabled() {
		log.Printf("✅ Upload archive enabled (bucket %s)", cfg.Archive.Bucket)
	}

	// Initialize event publisher (optional)
	publisher, err := services.NewEventPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		log.Fatalf("❌ Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()
	if cfg.Broker.URL != "" {
		log.Printf("✅ Publishing analysis events to exchange %s", cfg.Broker.Exchange)
	}

	intakeService := services.NewResumeIntakeService(
		resumeRepo,
		storageService,
		extractor,
		archiveService,
		cfg.Storage.MaxFileSize,
	)

	// Initialize analyzer
	analyzerService := services.NewAnalyzerService(
		analysisRepo,
		resumeRepo,
		geminiService,
		retriever,
		publisher,
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Analyzer service initialized")

	// Initialize worker
	worker := services.NewWorker(
		analysisRepo,
		analyzerService,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(intakeService, cfg.Extraction.PreviewChars)
	analyzeHandler := handlers.NewAnalyzeHandler(analysisRepo, resumeRepo, worker)
	resultHandler := handlers.NewResultHandler(analysisRepo)
	webHandler := handlers.NewWebHandler(
		intakeService,
		analyzerService,
		resumeRepo,
		analysisRepo,
		cfg.Extraction.PreviewChars,
	)
	log.Println("✅ Handlers initialized")

	engine, err := views.NewEngine()
	if err != nil {
		log.Fatalf("❌ Failed to load templates: %v", err)
	}
	if cfg.IsDevelopment() {
		engine.Reload(true)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Analyzer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		Views:        engine,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Browser UI
	app.Get("/", webHandler.HandleIndex)
	app.Post("/upload", webHandler.HandleUpload)
	app.Post("/resumes/:id/analyze", webHandler.HandleAnalyze)

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
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/result/:id", resultHandler.HandleGetResult)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 Open http://localhost%s in your browser\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
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
