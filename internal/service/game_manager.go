package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/benbeisheim/chess-rules-backend/internal/model"
	"github.com/benbeisheim/chess-rules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// GameManager is the registry of running games and the matchmaking queue.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	// pending holds matches for players who queued without a socket open.
	pending map[string]model.MatchFoundEvent
	mu      sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pending:          make(map[string]model.MatchFoundEvent),
	}
}

// RunMatchmaking pairs queued players every interval until ctx is done.
func (gm *GameManager) RunMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchNextPair() {
			}
		}
	}
}

// matchNextPair seats the two longest-waiting players in a new game and
// notifies them. It reports whether a pair was found.
func (gm *GameManager) matchNextPair() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID)
	p1Color, err1 := game.AddPlayer(player1.ID)
	p2Color, err2 := game.AddPlayer(player2.ID)
	if err1 != nil || err2 != nil {
		log.Errorf("matchmaking: seat %s and %s: %v %v", player1.ID, player2.ID, err1, err2)
		gm.queue.AddPlayer(player1)
		gm.queue.AddPlayer(player2)
		return false
	}
	gm.games[gameID] = game
	log.Infof("matchmaking: %s (%s) vs %s (%s) in game %s", player1.ID, p1Color, player2.ID, p2Color, gameID)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{Type: string(ws.MessageTypeMatchFound), GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{Type: string(ws.MessageTypeMatchFound), GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch delivers event on the player's channel and closes it. A player
// without a channel gets the event on their next JoinMatchmaking. Callers hold
// gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.pending[playerID] = event
		log.Debugf("matchmaking: holding match %s for %s", event.GameID, playerID)
		return false
	}
	delete(gm.matchingChannels, playerID)
	defer close(ch)

	select {
	case ch <- mustJSON(event):
		return true
	default:
		log.Warnf("matchmaking: could not notify player %s", playerID)
		return false
	}
}

// RegisterMatchmakingChannel makes ch the player's match notification
// channel. The channel needs room for one message; it is closed after use.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel drops the player's channel without closing it
// and takes them out of the queue.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
		gm.queue.Remove(playerID)
	}
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string, board *model.Board) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return model.ErrGameExists
	}

	gm.games[gameID] = model.NewGameFromBoard(gameID, board)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, model.ErrGameNotFound
	}

	return game, nil
}

// JoinMatchmaking queues playerID. If the player was already paired while
// nobody was listening, the held match is returned instead and the player is
// not queued again.
func (gm *GameManager) JoinMatchmaking(playerID string) (*model.MatchFoundEvent, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if event, ok := gm.pending[playerID]; ok {
		delete(gm.pending, playerID)
		return &event, nil
	}
	return nil, gm.queue.AddPlayer(model.Player{ID: playerID})
}

// QueueSize reports how many players are waiting.
func (gm *GameManager) QueueSize() int {
	return gm.queue.Size()
}
