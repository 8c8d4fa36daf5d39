package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid WebSocket connection attempts.
// It runs after EnsurePlayerID and copies the IDs the socket handler needs into Locals.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		playerID := c.Locals("playerID")
		if playerID == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}

		// The connection context is different from the upgrade context, so
		// the IDs must be carried over explicitly.
		c.Locals("wsGameID", utils.CopyString(c.Params("gameId")))
		c.Locals("wsPlayerID", playerID)

		return c.Next()
	}
}
