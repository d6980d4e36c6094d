package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/crescentlab/postpilot/configs"
	"github.com/crescentlab/postpilot/internal/api/handlers"
	"github.com/crescentlab/postpilot/internal/api/middleware"
	"github.com/crescentlab/postpilot/internal/engine"
	"github.com/crescentlab/postpilot/internal/publisher"
	"github.com/crescentlab/postpilot/internal/queue"
	"github.com/crescentlab/postpilot/internal/repository"
	"github.com/crescentlab/postpilot/internal/service"
	"github.com/crescentlab/postpilot/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	postRepo := repository.NewPostRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attemptRepo := repository.NewPublishAttemptRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	teamMemberRepo := repository.NewTeamMemberRepository(db)

	mediaService := service.NewMediaService(*cfg)
	alertQueue := queue.NewQueue(client, postRepo, teamMemberRepo, notificationRepo)

	publishEngine := engine.NewEngine(
		scheduleRepo,
		postRepo,
		attemptRepo,
		credentialRepo,
		publisher.DefaultRegistry(),
		mediaService,
		alertQueue,
		[]byte(cfg.SecretKey),
	)

	cronAuth := middleware.NewCronAuthMiddleware(*cfg)
	cronHandler := handlers.NewCronHandler(publishEngine)
	app.Get("/jobs/publish-due", cronAuth.CronAuth(), cronHandler.RunPublishDue)
	app.Get("/healthz", handlers.Healthz)
	app.Get("/metrics", adaptor.HTTPHandler(telemetry.Handler()))

	if cfg.InternalCron {
		c := cron.New()
		c.AddFunc(cfg.CronInterval, func() {
			summary, err := publishEngine.Run(context.Background())
			if err != nil {
				log.Printf("Publish run failed: %v", err)
				return
			}
			log.Printf("Publish run: processed=%d published=%d failed=%d skipped=%d",
				summary.Processed, summary.Published, summary.Failed, summary.Skipped)
		})
		c.Start()
	}

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishFailure, alertQueue.HandlePublishFailureTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
