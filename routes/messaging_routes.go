package routes

import (
	"time"

	"messenger-backend/handlers"
	"messenger-backend/identity"
	"messenger-backend/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App, messaging *handlers.MessagingHandler, accounts *handlers.AccountHandler, ws *handlers.WsHandler, verifier identity.Verifier, verifyTimeout time.Duration) {
	api := app.Group("/api/v1")

	messenger := api.Group("/messenger")
	messenger.Get("/find-person", messaging.FindPerson)

	protected := messenger.Group("", middleware.Protected(verifier, verifyTimeout))
	protected.Get("/messages", messaging.GetOldMessages)
	protected.Get("/history/download", messaging.DownloadHistory)
	protected.Post("/messages", messaging.SendMessage)
	protected.Patch("/messages", messaging.EditMessage)
	protected.Delete("/messages", messaging.DeleteMessage)

	api.Delete("/internal/users/:userId/messages", accounts.PurgeUserMessages)

	messenger.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	messenger.Get("/ws", websocket.New(ws.ServeWs))
}
