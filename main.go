package main

import (
	"log"
	"time"

	"elearn/config"
	controllers "elearn/controllers/course"
	"elearn/database"
	applog "elearn/logger"
	"elearn/progress"
	courseRoutes "elearn/routers/courseRoutes"
	"elearn/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()

	zlog, err := applog.New(config.AppConfig.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	database.ConnectDb()

	// Wire the progress engine into the HTTP layer
	engine := progress.NewEngine(
		database.Database.Db,
		zlog,
		progress.NewOutboxRequester(),
		time.Duration(config.AppConfig.PromoEnrollmentDays)*24*time.Hour,
	)
	controllers.Engine = engine

	// Background jobs
	utils.InitializeCertificateDispatcher(zlog.With("component", "certificates"))
	utils.InitializeEnrollmentScheduler(zlog.With("component", "enrollments"))

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization,X-Service-Key", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	zlog.Info("server is running", "port", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
