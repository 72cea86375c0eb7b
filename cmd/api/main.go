package main

import (
	"log"
	"time"

	config "messenger-backend/configs"
	"messenger-backend/database"
	"messenger-backend/handlers"
	"messenger-backend/identity"
	"messenger-backend/jobs"
	"messenger-backend/repository"
	"messenger-backend/routes"
	"messenger-backend/services"
	"messenger-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	db := database.ConnectDB()
	database.Migrate(db)
	database.SeedUsers(db)

	verifyTimeout := time.Duration(config.ConfigInt("AUTH_VERIFY_TIMEOUT_MS", 3000)) * time.Millisecond

	var verifier identity.Verifier
	if authURL := config.Config("AUTH_SERVICE_URL"); authURL != "" {
		verifier = identity.NewRemoteVerifier(authURL, verifyTimeout)
		log.Printf("✅ Using remote identity verification at %s", authURL)
	} else {
		verifier = identity.NewLocalVerifier(config.Config("JWT_SECRET"))
		log.Println("✅ Using local JWT identity verification")
	}

	hub := websocket.NewHub()
	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)
	messengerSvc := services.NewMessengerService(messageRepo, userRepo, hub)

	messagingHandler := handlers.NewMessagingHandler(messengerSvc)
	accountHandler := handlers.NewAccountHandler(messengerSvc)
	wsHandler := handlers.NewWsHandler(hub, verifier, verifyTimeout)

	c := cron.New()
	c.AddFunc("@hourly", jobs.SweepOrphanedMessages(db))
	go c.Start()
	log.Println("✅ Cron job for orphaned message sweep scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Messenger Backend",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.MessagingRoutes(app, messagingHandler, accountHandler, wsHandler, verifier, verifyTimeout)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.Config("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
