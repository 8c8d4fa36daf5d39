package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-rules-backend/internal/model"
	"github.com/benbeisheim/chess-rules-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	gameService := service.NewGameService(service.NewGameManager())
	app := fiber.New()
	RegisterRoutes(app, NewGameController(gameService), NewWebSocketController(gameService), []string{"*"})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, playerID, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func createGame(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	status, data := do(t, app, http.MethodPost, "/api/game/create", "alice", body)
	if status != fiber.StatusOK {
		t.Fatalf("create: %d %s", status, data)
	}
	var resp struct {
		GameID string `json:"game_id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.GameID == "" {
		t.Fatalf("create response %s: %v", data, err)
	}
	return resp.GameID
}

func TestRequiresPlayerID(t *testing.T) {
	app := newTestApp()
	if status, _ := do(t, app, http.MethodPost, "/api/game/create", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("got %d want %d", status, fiber.StatusUnauthorized)
	}
}

func TestPlayOverHTTP(t *testing.T) {
	app := newTestApp()
	id := createGame(t, app, "")

	for _, seat := range []struct {
		player string
		want   model.Color
	}{{"alice", model.White}, {"bob", model.Black}} {
		status, data := do(t, app, http.MethodPost, "/api/game/join/"+id, seat.player, "")
		if status != fiber.StatusOK {
			t.Fatalf("join %s: %d %s", seat.player, status, data)
		}
		var resp struct {
			Color model.Color `json:"color"`
		}
		if err := json.Unmarshal(data, &resp); err != nil || resp.Color != seat.want {
			t.Fatalf("join %s: %s %v", seat.player, data, err)
		}
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/join/"+id, "carol", ""); status != fiber.StatusConflict {
		t.Fatalf("third join: got %d want %d", status, fiber.StatusConflict)
	}

	status, data := do(t, app, http.MethodGet, "/api/game/"+id+"/moves?x=6&y=0", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("moves: %d %s", status, data)
	}
	var moves struct {
		From  model.Position   `json:"from"`
		Moves []model.Position `json:"moves"`
	}
	if err := json.Unmarshal(data, &moves); err != nil || len(moves.Moves) != 2 {
		t.Fatalf("moves response %s: %v", data, err)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/game/"+id+"/moves?x=g&y=1", "alice", ""); status != fiber.StatusBadRequest {
		t.Fatalf("bad coordinates: got %d", status)
	}

	white, black := "alice", "bob"
	if status, _ := do(t, app, http.MethodPost, "/api/game/"+id+"/move", black, `{"from":{"x":4,"y":6},"to":{"x":4,"y":4}}`); status != fiber.StatusBadRequest {
		t.Fatalf("out of turn: got %d want %d", status, fiber.StatusBadRequest)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/"+id+"/move", white, `{"from":{"x":4,"y":1},"to":{"x":4,"y":4}}`); status != fiber.StatusBadRequest {
		t.Fatalf("illegal move: got %d want %d", status, fiber.StatusBadRequest)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/"+id+"/move", "carol", `{"from":{"x":4,"y":1},"to":{"x":4,"y":3}}`); status != fiber.StatusForbidden {
		t.Fatalf("stranger: got %d want %d", status, fiber.StatusForbidden)
	}

	status, data = do(t, app, http.MethodPost, "/api/game/"+id+"/move", white, `{"from":{"x":4,"y":1},"to":{"x":4,"y":3}}`)
	if status != fiber.StatusOK {
		t.Fatalf("e4: %d %s", status, data)
	}
	var after model.GameState
	if err := json.Unmarshal(data, &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after.ToMove != model.Black || after.Board[3][4] == nil || after.LastMove == nil {
		t.Fatalf("state after e4: %s", data)
	}

	status, data = do(t, app, http.MethodGet, "/api/game/"+id+"/status", white, "")
	if status != fiber.StatusOK {
		t.Fatalf("status: %d %s", status, data)
	}
	var report model.StatusReport
	if err := json.Unmarshal(data, &report); err != nil || report.ToMove != model.Black || report.Check.Black {
		t.Fatalf("report %s: %v", data, err)
	}
}

func getState(t *testing.T, app *fiber.App, id string) model.GameState {
	t.Helper()
	status, data := do(t, app, http.MethodGet, "/api/game/"+id, "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("state: %d %s", status, data)
	}
	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestCreateGameFromFEN(t *testing.T) {
	app := newTestApp()
	id := createGame(t, app, `{"fen":"k7/8/1Q6/8/8/8/8/2K5 b - - 0 1"}`)
	state := getState(t, app, id)
	if state.Status != model.StatusStalemate || state.Resolve == nil {
		t.Fatalf("state: %+v", state)
	}

	if status, _ := do(t, app, http.MethodPost, "/api/game/create", "alice", `{"fen":"nonsense"}`); status != fiber.StatusBadRequest {
		t.Fatalf("bad fen: got %d want %d", status, fiber.StatusBadRequest)
	}
}

func TestUnknownGameIsNotFound(t *testing.T) {
	app := newTestApp()
	for _, path := range []string{"/api/game/missing", "/api/game/missing/status", "/api/game/missing/moves?x=0&y=1"} {
		if status, _ := do(t, app, http.MethodGet, path, "alice", ""); status != fiber.StatusNotFound {
			t.Fatalf("%s: got %d want %d", path, status, fiber.StatusNotFound)
		}
	}
}

func TestMatchmakingJoinOverHTTP(t *testing.T) {
	app := newTestApp()
	if status, _ := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", ""); status != fiber.StatusOK {
		t.Fatalf("join: got %d", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", ""); status != fiber.StatusConflict {
		t.Fatalf("rejoin: got %d want %d", status, fiber.StatusConflict)
	}
}

func TestWebSocketRoutesRequireUpgrade(t *testing.T) {
	app := newTestApp()
	if status, _ := do(t, app, http.MethodGet, "/ws/game/abc", "alice", ""); status != fiber.StatusUpgradeRequired {
		t.Fatalf("got %d want %d", status, fiber.StatusUpgradeRequired)
	}
}

func TestSeatsKeepPlayerIDsAcrossRequests(t *testing.T) {
	app := newTestApp()
	id := createGame(t, app, "")

	for _, player := range []string{"alice", "bobby"} {
		if status, data := do(t, app, http.MethodPost, "/api/game/join/"+id, player, ""); status != fiber.StatusOK {
			t.Fatalf("join %s: %d %s", player, status, data)
		}
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/"+id+"/move", "zzzzz", `{"from":{"x":4,"y":1},"to":{"x":4,"y":3}}`); status != fiber.StatusForbidden {
		t.Fatalf("stranger move: got %d want %d", status, fiber.StatusForbidden)
	}

	state := getState(t, app, id)
	if state.Players.White.ID != "alice" || state.Players.Black.ID != "bobby" {
		t.Fatalf("seats: %+v", state.Players)
	}
	if state.ToMove != model.White || state.Ply != 0 {
		t.Fatalf("board moved: %+v", state)
	}
}

func TestMatchmakingJoinReportsMatch(t *testing.T) {
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager)
	app := fiber.New()
	RegisterRoutes(app, NewGameController(gameService), NewWebSocketController(gameService), []string{"*"})

	for _, player := range []string{"alice", "bob"} {
		if status, data := do(t, app, http.MethodPost, "/api/game/matchmaking/join", player, ""); status != fiber.StatusOK {
			t.Fatalf("join %s: %d %s", player, status, data)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gameManager.RunMatchmaking(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for {
		status, data := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", "")
		if status == fiber.StatusOK {
			var resp struct {
				Status string      `json:"status"`
				GameID string      `json:"gameId"`
				Color  model.Color `json:"color"`
			}
			if err := json.Unmarshal(data, &resp); err != nil {
				t.Fatalf("decode %s: %v", data, err)
			}
			if resp.Status != "matched" || resp.GameID == "" || resp.Color != model.White {
				t.Fatalf("response: %s", data)
			}
			return
		}
		if status != fiber.StatusConflict || time.Now().After(deadline) {
			t.Fatalf("waiting for match: %d %s", status, data)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
