package controller

import (
	"github.com/benbeisheim/chess-rules-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the REST and websocket endpoints on app.
func RegisterRoutes(app *fiber.App, gameController *GameController, wsController *WebSocketController, origins []string) {
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID())
	wsRoutes.Get("/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, wsConfig))
	wsRoutes.Get("/matchmaking", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/moves", gameController.LegalMoves)
	gameRoutes.Get("/:gameId/status", gameController.GetStatus)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
}
