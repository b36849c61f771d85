// FILE: internal/transport/cli/handler.go
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chesscore/internal/cli"
	"chesscore/internal/core"
	"chesscore/internal/engine"
	"chesscore/internal/game"
	"chesscore/internal/service"
)

type CLIHandler struct {
	svc    *service.Service
	view   *cli.CLI
	gameID string
}

func New(svc *service.Service, view *cli.CLI) *CLIHandler {
	return &CLIHandler{
		svc:  svc,
		view: view,
	}
}

// Main game loop - simple command processing
func (h *CLIHandler) Run() {
	for {
		// Generate prompt based on current game state
		h.view.ShowPrompt(h.getPrompt())

		// Get command (blocking)
		cmd, err := h.view.GetCommand()
		if err != nil {
			break
		}

		// Process command - returns false to exit
		if !h.ProcessCommand(cmd) {
			break
		}
	}
}

// GameID returns the active game, empty when none
func (h *CLIHandler) GameID() string {
	return h.gameID
}

// Generates the appropriate command prompt
func (h *CLIHandler) getPrompt() string {
	prompt := "> "
	if h.gameID == "" {
		return prompt
	}
	_ = h.svc.Inspect(h.gameID, func(g *game.Game) {
		if g.State() == core.StateOngoing {
			// Always show whose turn it is
			prompt = fmt.Sprintf("[%s]> ", g.Turn())
		}
	})
	return prompt
}

// Handles user commands - returns false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:
		return true

	case cli.CmdNew:
		h.handleNewGame("")

	case cli.CmdResume:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: resume <FEN string>")
			return true
		}
		h.handleNewGame(strings.Join(cmd.Args, " "))

	case cli.CmdMove:
		if !h.requireGame() {
			return true
		}
		h.handleMove(cmd.Args)

	case cli.CmdMoves:
		if !h.requireGame() {
			return true
		}
		if len(cmd.Args) != 1 {
			h.view.ShowMessage("Usage: moves <square>")
			return true
		}
		from, err := core.ParseSquare(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		moves, err := h.svc.LegalMoves(h.gameID, from)
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowLegalMoves(from, moves)

	case cli.CmdUndo:
		if !h.requireGame() {
			return true
		}

		// Parse undo count
		count := 1
		if len(cmd.Args) > 0 {
			if n, err := strconv.Atoi(cmd.Args[0]); err == nil && n > 0 {
				count = n
			} else {
				h.view.ShowMessage("Invalid undo count. Usage: undo [count]")
				return true
			}
		}

		if err := h.svc.UndoMoves(h.gameID, count); err != nil {
			h.view.ShowError(err)
			return true
		}
		if count == 1 {
			h.view.ShowMessage("Move undone")
		} else {
			h.view.ShowMessage(fmt.Sprintf("%d moves undone", count))
		}
		h.displayBoard()

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}

		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
		} else {
			h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
			if h.gameID != "" {
				h.displayBoard()
			}
		}

	case cli.CmdVerbose:
		verbose := h.view.ToggleVerbose()
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", verbose))

	case cli.CmdHistory:
		if !h.requireGame() {
			return true
		}
		_ = h.svc.Inspect(h.gameID, h.view.ShowGameHistory)

	case cli.CmdBoard:
		if !h.requireGame() {
			return true
		}
		h.displayBoard()

	case cli.CmdFEN:
		if !h.requireGame() {
			return true
		}
		_ = h.svc.Inspect(h.gameID, func(g *game.Game) {
			h.view.ShowMessage(g.FEN())
		})

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *CLIHandler) requireGame() bool {
	if h.gameID == "" {
		h.view.ShowMessage("No active game. Use 'new' or 'resume <FEN>'.")
		return false
	}
	return true
}

func (h *CLIHandler) handleMove(args []string) {
	from, to, err := cli.ParseMove(args)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	outcome, err := h.svc.SubmitMove(h.gameID, from, to)
	if err != nil {
		if errors.Is(err, game.ErrGameOver) {
			h.view.ShowMessage("The game is over. Use 'undo', 'new' or 'resume <FEN>'.")
			return
		}
		h.view.ShowError(fmt.Errorf("invalid move: %w", err))
		return
	}

	var state core.State
	_ = h.svc.Inspect(h.gameID, func(g *game.Game) {
		moves := g.MoveLog()
		last := moves[len(moves)-1]
		h.view.ShowMove(core.OppositeColor(g.Turn()), last.Piece, last.From, last.To)
		h.view.DisplayBoard(g.Board())
		state = g.State()
	})

	switch {
	case outcome.Kind == engine.OutcomeCheckmate:
		h.view.ShowGameOver(state)
	case outcome.Check:
		h.view.ShowMessage("Check!")
	}
}

// Starts a new game, from fen when given
func (h *CLIHandler) handleNewGame(fen string) {
	gameID := h.svc.GenerateGameID()
	if err := h.svc.CreateGame(gameID, fen); err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %w", err))
		return
	}
	if h.gameID != "" {
		_ = h.svc.DeleteGame(h.gameID)
	}
	h.gameID = gameID

	h.view.ShowMessage("Game started.")
	h.displayBoard()

	_ = h.svc.Inspect(gameID, func(g *game.Game) {
		if g.State() != core.StateOngoing {
			h.view.ShowGameOver(g.State())
		} else if g.InCheck(g.Turn()) {
			h.view.ShowMessage("Check!")
		}
	})
}

func (h *CLIHandler) displayBoard() {
	_ = h.svc.Inspect(h.gameID, func(g *game.Game) {
		h.view.DisplayBoard(g.Board())
	})
}
