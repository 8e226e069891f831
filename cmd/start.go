package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"douban2feishu/core/cache"
	"douban2feishu/core/config"
	"douban2feishu/core/database"
	"douban2feishu/core/feishu"
	"douban2feishu/core/loader"
	"douban2feishu/core/logger"
	"douban2feishu/core/middleware/auth"
	"douban2feishu/core/middleware/rayid"
	"douban2feishu/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (mapping store, run history)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		// 4. Connect to Redis (mapping cache, sync state)
		cacheClient, err := cache.NewClient(cfg.Cache, logg)
		if err != nil {
			logg.Fatal("Failed to connect to cache", zap.Error(err))
		}
		defer cacheClient.Close()

		// 5. Bitable API client
		feishuClient := feishu.NewClient(cfg.Feishu, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		syncFeature, err := sync.NewFeature(feishuClient, db, cacheClient, cfg.Sync, logg)
		if err != nil {
			logg.Fatal("Failed to initialize sync feature", zap.Error(err))
		}
		mgr.Register(syncFeature)

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
