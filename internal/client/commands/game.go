package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chesscore/internal/cli"
	"chesscore/internal/client/display"
	"chesscore/internal/core"

	"github.com/fasthttp/websocket"
)

func (r *Registry) registerGameCommands() {
	for _, cmd := range []*Command{
		{Name: "new", ShortName: "n", Description: "Create a new game", Usage: "new [FEN]", Handler: newGameHandler},
		{Name: "join", ShortName: "j", Description: "Join/set current game ID", Usage: "join <gameId>", Handler: joinGameHandler},
		{Name: "move", ShortName: "m", Description: "Make a move", Usage: "move <e2e4|e2-e4|e2 e4>", Handler: moveHandler},
		{Name: "moves", ShortName: "l", Description: "List legal moves from a square", Usage: "moves <square>", Handler: legalMovesHandler},
		{Name: "undo", ShortName: "u", Description: "Undo moves", Usage: "undo [count]", Handler: undoHandler},
		{Name: "show", ShortName: "h", Description: "Show board and game state", Usage: "show", Handler: showBoardHandler},
		{Name: "state", ShortName: "s", Description: "Show raw game JSON", Usage: "state", Handler: gameStateHandler},
		{Name: "delete", ShortName: "d", Description: "Delete a game", Usage: "delete [gameId]", Handler: deleteGameHandler},
		{Name: "poll", ShortName: "p", Description: "Long-poll for game updates", Usage: "poll", Handler: pollHandler},
		{Name: "watch", ShortName: "w", Description: "Stream game updates over WebSocket", Usage: "watch [updates]", Handler: watchHandler},
	} {
		cmd.Group = "Game"
		r.Register(cmd)
	}
}

func newGameHandler(s *Session, args []string) error {
	fen := strings.Join(args, " ")

	resp, err := s.Client.CreateGame(fen)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	s.printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	if resp.State != core.StateOngoing.String() {
		s.printf("%sGame already decided: %s%s\n", display.Yellow, resp.State, display.Reset)
	}
	return nil
}

func joinGameHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <gameId>")
	}

	resp, err := s.Client.GetGame(args[0])
	if err != nil {
		return err
	}
	s.SetGame(resp)

	s.printf("%sJoined game: %s%s\n", display.Green, resp.GameID, display.Reset)
	s.printf("Turn: %s | State: %s | Moves: %d\n", display.ColorForTurn(resp.Turn), resp.State, len(resp.Moves))
	return nil
}

func moveHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: move <e2e4>")
	}

	from, to, err := cli.ParseMove(args)
	if err != nil {
		return err
	}

	resp, err := s.Client.MakeMove(gameID, from.String(), to.String())
	if err != nil {
		return err
	}
	s.SetGame(&resp.Game)

	s.printf("%sMove accepted: %s-%s%s\n", display.Green, from, to, display.Reset)
	switch {
	case resp.Outcome == "checkmate":
		s.printf("%sCheckmate! %s wins%s\n", display.Magenta, display.ColorForTurn(resp.Winner), display.Reset)
	case resp.Check:
		s.printf("%sCheck!%s\n", display.Magenta, display.Reset)
	}
	return nil
}

func legalMovesHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: moves <square>")
	}

	resp, err := s.Client.LegalMoves(gameID, args[0])
	if err != nil {
		return err
	}

	if len(resp.Moves) == 0 {
		s.printf("No legal moves from %s\n", resp.From)
		return nil
	}
	s.printf("%s: %s\n", resp.From, strings.Join(resp.Moves, " "))
	return nil
}

func undoHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	count := 1
	if len(args) > 0 {
		if count, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid count: %s", args[0])
		}
	}

	resp, err := s.Client.UndoMoves(gameID, count)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	s.printf("%sUndid %d move(s)%s\n", display.Green, count, display.Reset)
	return nil
}

func showBoardHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	game, err := s.Client.GetGame(gameID)
	if err != nil {
		return err
	}
	board, err := s.Client.GetBoard(gameID)
	if err != nil {
		return err
	}
	s.SetGame(game)

	s.printf("\n")
	display.RenderBoard(s.Out, board.Board)

	s.printf("\nFEN: %s\n", game.FEN)
	s.printf("Turn: %s | State: %s | Moves: %d\n", display.ColorForTurn(game.Turn), game.State, len(game.Moves))
	if game.Check {
		s.printf("%sIn check%s\n", display.Magenta, display.Reset)
	}

	if len(game.Moves) > 0 {
		var sb strings.Builder
		for i, m := range game.Moves {
			if i%2 == 0 {
				if i > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(fmt.Sprintf("%d.", i/2+1))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(m.From + m.To)
		}
		s.printf("History: %s\n", sb.String())
	}

	if last := game.LastMove; last != nil {
		s.printf("Last move: %s %s-%s by %s\n", last.Piece, last.From, last.To, display.ColorForTurn(last.PlayerColor))
	}
	return nil
}

func gameStateHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	resp, err := s.Client.GetGame(gameID)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	s.printf("%sGame State:%s\n", display.Cyan, display.Reset)
	display.PrettyPrintJSON(s.Out, resp)
	return nil
}

func deleteGameHandler(s *Session, args []string) error {
	gameID := s.CurrentGame
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("specify game ID or set current game")
	}

	if err := s.Client.DeleteGame(gameID); err != nil {
		return err
	}
	if gameID == s.CurrentGame {
		s.ClearGame()
	}

	s.printf("%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}

func pollHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	moveCount := s.LastMoveCount
	s.printf("%sLong-polling for updates (move count: %d)...%s\n", display.Cyan, moveCount, display.Reset)

	resp, err := s.Client.GetGameWithPoll(gameID, moveCount)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	if len(resp.Moves) != moveCount {
		s.printf("%sGame updated! Move count now %d%s\n", display.Green, len(resp.Moves), display.Reset)
		if last := resp.LastMove; last != nil {
			s.printf("Last move: %s-%s\n", last.From, last.To)
		}
	} else {
		s.printf("%sNo updates (timeout)%s\n", display.Yellow, display.Reset)
	}
	return nil
}

// watchTimeout bounds the wait for a single streamed update
const watchTimeout = 30 * time.Second

func watchHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	updates := 1
	if len(args) > 0 {
		if updates, err = strconv.Atoi(args[0]); err != nil || updates < 1 {
			return fmt.Errorf("invalid update count: %s", args[0])
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(s.Client.WebSocketURL(gameID), nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	s.printf("%sWatching %s for %d update(s)...%s\n", display.Cyan, gameID, updates, display.Reset)

	// The first frame is the current view
	for received := -1; received < updates; received++ {
		conn.SetReadDeadline(time.Now().Add(watchTimeout))

		var frame struct {
			core.GameResponse
			Code string `json:"code"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("stream closed: %w", err)
		}
		if frame.Code != "" {
			s.ClearGame()
			return fmt.Errorf("stream ended: %s", frame.Code)
		}

		view := frame.GameResponse
		s.SetGame(&view)
		s.printf("[%d moves] %s | Turn: %s | State: %s\n", len(view.Moves), view.FEN, display.ColorForTurn(view.Turn), view.State)
	}
	return nil
}
