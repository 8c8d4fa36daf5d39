package controller

import (
	"errors"
	"strconv"

	"github.com/benbeisheim/chess-rules-backend/internal/model"
	"github.com/benbeisheim/chess-rules-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrGameExists),
		errors.Is(err, model.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrWrongTurn),
		errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrInvalidFEN):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(gameState)
}

func (gc *GameController) GetStatus(c *fiber.Ctx) error {
	report, err := gc.gameService.GetStatus(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(report)
}

// LegalMoves answers GET /:gameId/moves?x=&y= with the selected piece's
// legal destinations.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	if errX != nil || errY != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "x and y must be integers",
		})
	}

	from := model.Position{X: x, Y: y}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), from)
	if err != nil {
		return errorResponse(c, err)
	}
	if moves == nil {
		moves = []model.Position{}
	}
	return c.JSON(fiber.Map{
		"from":  from,
		"moves": moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	playerID := c.Locals("playerID").(string)

	state, err := gc.gameService.HandleMove(c.Params("gameId"), playerID, move)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	event, err := gc.gameService.JoinMatchmaking(playerID)
	if err != nil {
		return errorResponse(c, err)
	}
	if event != nil {
		return c.JSON(fiber.Map{
			"status": "matched",
			"gameId": event.GameID,
			"color":  event.Color,
		})
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
