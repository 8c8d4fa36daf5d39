package service

import (
	"fmt"

	"github.com/benbeisheim/chess-rules-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// GameService is what controllers call. Every operation resolves the game by
// ID and delegates to it.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame starts a game from the standard position, or from fen when it
// is not empty.
func (gs *GameService) CreateGame(fen string) (string, error) {
	board := model.NewBoard()
	if fen != "" {
		var err error
		if board, err = model.ParseFEN(fen); err != nil {
			return "", err
		}
	}

	gameID := uuid.New().String()
	if err := gs.gameManager.CreateGame(gameID, board); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.Infof("created game %s", gameID)
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) (*model.MatchFoundEvent, error) {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) GetStatus(gameID string) (model.StatusReport, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.StatusReport{}, err
	}
	return game.Report(), nil
}

// LegalMoves answers a square selection with its legal destinations.
func (gs *GameService) LegalMoves(gameID string, from model.Position) ([]model.Position, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(from), nil
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	if _, err := game.MakeMove(playerID, move); err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
