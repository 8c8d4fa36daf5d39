package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chess-rules-backend/internal/model"
	"github.com/benbeisheim/chess-rules-backend/internal/service"
	"github.com/benbeisheim/chess-rules-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Locals("wsGameID").(string)
	playerID := c.Locals("wsPlayerID").(string)

	// Broadcasts from other players' moves share this socket with the replies
	// below, so every write goes through one lock.
	conn := model.NewLockedConn(c)
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warnf("failed to register connection for game %s: %v", gameID, err)
		conn.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read error: %v", gameID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(conn, fmt.Errorf("parse message: %w", err))
			continue
		}

		reply, err := wsc.handleMessage(gameID, playerID, msg)
		if err != nil {
			wsc.sendError(conn, err)
			continue
		}
		if reply != nil {
			if err := conn.WriteJSON(reply); err != nil {
				log.Debugf("game %s: write error: %v", gameID, err)
				return
			}
		}
	}
}

// handleMessage dispatches one client message. A select is answered
// directly; a move is answered by the state broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) (*ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, move)
		return nil, err

	case ws.MessageTypeSelect:
		var from model.Position
		if err := json.Unmarshal(msg.Payload, &from); err != nil {
			return nil, err
		}
		moves, err := wsc.gameService.LegalMoves(gameID, from)
		if err != nil {
			return nil, err
		}
		if moves == nil {
			moves = []model.Position{}
		}
		reply, err := ws.NewMessage(ws.MessageTypeLegalMoves, fiber.Map{"from": from, "moves": moves})
		if err != nil {
			return nil, err
		}
		return &reply, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking holds the socket open until the player is paired, then
// sends the match event and closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("wsPlayerID").(string)

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	event, err := wsc.gameService.JoinMatchmaking(playerID)
	if err != nil {
		log.Debugf("matchmaking join for %s: %v", playerID, err)
	}
	if event != nil {
		if err := c.WriteJSON(event); err != nil {
			log.Debugf("matchmaking write for %s: %v", playerID, err)
		}
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "matched"))
		return
	}

	// A closed socket surfaces as a read error.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
			log.Debugf("matchmaking write for %s: %v", playerID, err)
		}
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "matched"))
	case <-closed:
	}
}

// Helper method to send error messages
func (wsc *WebSocketController) sendError(c model.Conn, err error) {
	msg, mErr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if mErr != nil {
		return
	}
	c.WriteJSON(msg)
}
