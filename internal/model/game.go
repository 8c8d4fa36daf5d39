package model

import (
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-rules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a websocket connection a game writes to. A game
// broadcasts from whichever goroutine made the move, so a registered Conn must
// accept writes from several goroutines; wrap raw sockets with NewLockedConn.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// LockedConn serialises writes to a connection that allows a single writer.
type LockedConn struct {
	mu   sync.Mutex
	conn Conn
}

func NewLockedConn(conn Conn) *LockedConn {
	return &LockedConn{conn: conn}
}

func (c *LockedConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *LockedConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *LockedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game owns one board and serialises every read and move on it, so a
// legality simulation never overlaps with another move.
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *Board
	players     Players
	lastPly     *Ply
	status      Status
	connections *GameConnections
}

// GameState is a snapshot of a game for clients.
type GameState struct {
	Board    [8][8]*Piece `json:"board"`
	ToMove   Color        `json:"toMove"`
	IsCheck  bool         `json:"isCheck"`
	Status   Status       `json:"status"`
	Resolve  *Status      `json:"resolve"`
	Winner   *Color       `json:"winner"`
	Players  Players      `json:"players"`
	LastMove *Ply         `json:"lastMove"`
	Ply      int          `json:"ply"`
	FEN      string       `json:"fen"`
}

// SideReport holds a per-color answer.
type SideReport struct {
	White bool `json:"white"`
	Black bool `json:"black"`
}

// StatusReport answers the check and mate queries for both colors.
type StatusReport struct {
	ToMove    Color      `json:"toMove"`
	Check     SideReport `json:"check"`
	Mate      SideReport `json:"mate"`
	Stalemate SideReport `json:"stalemate"`
	Resolve   *Status    `json:"resolve"`
}

func NewGame(id string) *Game {
	return NewGameFromBoard(id, NewBoard())
}

// NewGameFromBoard starts a game from an arbitrary position.
func NewGameFromBoard(id string, board *Board) *Game {
	return &Game{
		ID:          id,
		board:       board,
		status:      board.Status(),
		connections: NewGameConnections(),
	}
}

// AddPlayer seats playerID in the first free color. A player already seated
// gets their color back.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.players.colorOf(playerID); ok {
		return color, nil
	}
	for _, color := range []Color{White, Black} {
		if seat := g.players.seat(color); seat.ID == "" {
			*seat = ClientPlayer{ID: playerID, Color: color}
			log.Debugf("game %s: seated %s as %s", g.ID, playerID, color)
			return color, nil
		}
	}
	return "", ErrGameFull
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.players.colorOf(playerID)
	return ok
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

// LegalMoves returns where the piece on from may go. Only the side on move
// has any.
func (g *Game) LegalMoves(from Position) []Position {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.LegalMoves(from.X, from.Y)
}

// MakeMove plays move for playerID, who must hold the color on move, then
// pushes the new state to every connection.
func (g *Game) MakeMove(playerID string, move WSMove) (*Ply, error) {
	g.mu.Lock()
	if g.status.Over() {
		g.mu.Unlock()
		return nil, ErrGameOver
	}
	color, ok := g.players.colorOf(playerID)
	if !ok {
		g.mu.Unlock()
		return nil, ErrNotInGame
	}
	if color != g.board.Turn() {
		g.mu.Unlock()
		return nil, ErrNotYourTurn
	}

	ply, err := g.board.Apply(move.From, move.To, move.Promotion)
	if err != nil {
		g.mu.Unlock()
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	g.lastPly = ply
	g.status = g.board.Status()
	log.Debugf("game %s: %s played %s, status %s", g.ID, color, ply, g.status)
	state := g.snapshot()
	g.mu.Unlock()

	g.broadcastState(state)
	return ply, nil
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) snapshot() GameState {
	state := GameState{
		Board:   g.board.Grid(),
		ToMove:  g.board.Turn(),
		IsCheck: g.board.InCheck(g.board.Turn()),
		Status:  g.status,
		Players: g.players,
		Ply:     g.board.Ply(),
		FEN:     g.board.FEN(),
	}
	if g.lastPly != nil {
		ply := *g.lastPly
		state.LastMove = &ply
	}
	if g.status.Over() {
		resolve := g.status
		state.Resolve = &resolve
	}
	if g.status == StatusCheckmate {
		winner := g.board.Turn().Opponent()
		state.Winner = &winner
	}
	return state
}

// Report answers check, mate and stalemate for both colors.
func (g *Game) Report() StatusReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	report := StatusReport{
		ToMove:    g.board.Turn(),
		Check:     SideReport{White: g.board.InCheck(White), Black: g.board.InCheck(Black)},
		Mate:      SideReport{White: g.board.IsMate(White), Black: g.board.IsMate(Black)},
		Stalemate: SideReport{White: g.board.IsStalemate(White), Black: g.board.IsStalemate(Black)},
	}
	if g.status.Over() {
		resolve := g.status
		report.Resolve = &resolve
	}
	return report
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	state := g.snapshot()
	g.mu.Unlock()

	if !isAuthorized {
		return fmt.Errorf("not authorized to join game %s", g.ID)
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}

	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection %p for player %s", g.ID, conn, playerID)

	g.broadcastState(state)
	return nil
}

func (g *Game) isPlayerInGame(playerID string) bool {
	_, ok := g.players.colorOf(playerID)
	return ok
}

// UnregisterConnection forgets conn, but only if it is still the player's
// current connection.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Debugf("game %s: unregistering connection %p for player %s", g.ID, conn, playerID)
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) broadcastState(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send state to player %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
