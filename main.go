package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"crypto-support-bot/config"
	"crypto-support-bot/handlers"
	"crypto-support-bot/middleware"
	"crypto-support-bot/services"
	"crypto-support-bot/webhooks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(ctx)

	// Initialize services
	services.InitServices(db, cfg.DatabaseName)

	// Session TTL index for authentication
	if err := services.CreateSessionIndexes(ctx); err != nil {
		slog.Error("Failed to create session indexes", "error", err)
		// Continue anyway - expired sessions are also checked at read time
	}

	// Seed the FAQ collection on first start
	if err := services.SeedFAQEntries(ctx, config.DefaultFAQSeeds()); err != nil {
		slog.Error("Failed to seed FAQ entries", "error", err)
		os.Exit(1)
	}

	// Default admin account for the dashboard
	if err := services.EnsureDefaultOperator(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		slog.Error("Failed to ensure default operator", "error", err)
		os.Exit(1)
	}

	// Build the routing pipeline
	repo := services.NewMongoFAQRepository()
	entries, err := repo.LoadEntries(ctx)
	if err != nil {
		slog.Error("Failed to load FAQ entries", "error", err)
		os.Exit(1)
	}
	slog.Info("FAQ entries loaded", "count", len(entries))

	knowledge := services.NewKnowledgeStore(
		entries,
		config.DefaultFallbackResponses(),
		config.DefaultProjectNames(),
		repo,
		nil, // time-seeded fallback selection
	)

	categoryKeywords := config.DefaultCategoryKeywords()
	categories := services.NewCategoryClassifier(
		categoryKeywords.Urgent,
		categoryKeywords.Media,
		categoryKeywords.Audit,
		config.DefaultDistressWords(),
	)

	classifier := services.NewClassifier(knowledge, categories)

	market := services.NewMarketService(cfg.PriceAPIBase, cfg.QuoteCacheTTL, cfg.ProviderTimeout)
	explorer := services.NewExplorerService(cfg.ExplorerAPIBase, cfg.ExplorerAPIKey, cfg.QuoteCacheTTL, cfg.ProviderTimeout)
	telegram := services.NewTelegramService(cfg.BotToken)
	forwarder := services.NewForwarder(cfg.OperatorChatID, telegram, services.GetWebSocketManager())

	handlers.InitRouting(classifier, knowledge, market, explorer, telegram, forwarder)

	// Periodic session cleanup
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			cleanupCtx, cancelCleanup := context.WithTimeout(context.Background(), 30*time.Second)
			if removed, err := services.CleanupExpiredSessions(cleanupCtx); err != nil {
				slog.Error("Session cleanup failed", "error", err)
			} else if removed > 0 {
				slog.Info("Expired sessions removed", "count", removed)
			}
			cancelCleanup()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	// Register webhook routes
	webhooks.RegisterRoutes(app, cfg)

	auth := app.Group("/auth")
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", handlers.GetCurrentUser)
	auth.Get("/check", handlers.CheckSession)

	// Knowledge base and escalation management (protected)
	admin := app.Group("/admin", middleware.RequireAuth)
	admin.Post("/faq", middleware.RequireAdmin, handlers.AddFAQEntry)
	admin.Get("/faq", handlers.ListFAQEntries)
	admin.Get("/faq/search", handlers.SearchFAQEntries)
	admin.Get("/forwards", handlers.ListForwards)
	admin.Put("/customers/:chatID/stop", handlers.UpdateCustomerStopStatus)

	// Dashboard API endpoints (protected)
	dashboard := app.Group("/api/dashboard", middleware.RequireAuth)
	dashboard.Get("/stats", handlers.GetStats)
	dashboard.Get("/messages/:chatID", handlers.GetChatHistory)
	dashboard.Get("/balance/:address", handlers.GetWalletBalance)

	// WebSocket endpoint (requires authentication)
	dashboard.Get("/ws", handlers.WebSocketUpgrade, websocket.New(handlers.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "crypto-support-bot",
		})
	})

	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
