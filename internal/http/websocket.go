// FILE: internal/http/websocket.go
package http

import (
	"context"
	"log"

	"chesscore/internal/core"
	"chesscore/internal/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// websocketUpgrade rejects plain HTTP requests to the stream endpoints
func websocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// StreamGame pushes the game view to the client on connect and after every
// change of position until the game is deleted or the client leaves
func (h *HTTPHandler) StreamGame(conn *websocket.Conn) {
	gameID := conn.Params("gameId")
	if !isValidUUID(gameID) {
		_ = conn.WriteJSON(core.ErrorResponse{
			Error: "invalid game ID format",
			Code:  core.ErrInvalidRequest,
		})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Inbound frames are ignored; a read error means the client is gone
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	lastCount := -1
	lastFEN := ""
	for {
		// Registered before the read so no change between the two is lost
		notify := h.svc.RegisterWait(ctx, gameID, lastCount)

		resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
		if !resp.Success {
			_ = conn.WriteJSON(resp.Error)
			return
		}

		view := resp.Data.(core.GameResponse)
		if len(view.Moves) != lastCount || view.FEN != lastFEN {
			if err := conn.WriteJSON(view); err != nil {
				log.Printf("Stream write failed for game %s: %v", gameID, err)
				return
			}
			lastCount = len(view.Moves)
			lastFEN = view.FEN
		}

		select {
		case _, ok := <-notify:
			if !ok {
				// Service shutting down
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
