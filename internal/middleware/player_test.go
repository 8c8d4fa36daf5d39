package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestEnsurePlayerID(t *testing.T) {
	app := fiber.New()
	app.Get("/who", EnsurePlayerID(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("playerID").(string))
	})

	cases := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"header", "/who", "alice", fiber.StatusOK, "alice"},
		{"query", "/who?playerId=bob", "", fiber.StatusOK, "bob"},
		{"header wins", "/who?playerId=bob", "alice", fiber.StatusOK, "alice"},
		{"missing", "/who", "", fiber.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("X-Player-ID", tc.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("status: got %d want %d", resp.StatusCode, tc.status)
			}
			if tc.body != "" {
				data, _ := io.ReadAll(resp.Body)
				if string(data) != tc.body {
					t.Fatalf("body: got %q want %q", data, tc.body)
				}
			}
		})
	}
}

func TestEnsurePlayerIDOutlivesRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Get("/who", EnsurePlayerID(), func(c *fiber.Ctx) error {
		kept = append(kept, c.Locals("playerID").(string))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, id := range []string{"alice", "zzzzz"} {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set("X-Player-ID", id)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
	}
	if len(kept) != 2 || kept[0] != "alice" || kept[1] != "zzzzz" {
		t.Fatalf("stored IDs: got %v", kept)
	}
}
