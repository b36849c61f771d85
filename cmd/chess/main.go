// FILE: cmd/chess/main.go

// Package main runs a local two-player chess game in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"chesscore/internal/cli"
	"chesscore/internal/game"
	"chesscore/internal/service"
	clitransport "chesscore/internal/transport/cli"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	allowSelfCheck := flag.Bool("allow-self-check", false, "Accept moves that leave the mover's own king in check")
	historyFile := flag.String("history", ".chess_history", "Readline history file (empty disables)")
	theme := flag.String("theme", "", "Board color theme (off|brown|green|gray), brown on a terminal by default")
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     *historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	svc := service.New(nil, game.Options{AllowSelfCheck: *allowSelfCheck})
	defer svc.Shutdown(time.Second)

	view := cli.New(rl, rl.Stdout())
	switch {
	case *theme != "":
		if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
			fmt.Printf("Failed to start: %v\n", err)
			os.Exit(1)
		}
	case term.IsTerminal(int(os.Stdout.Fd())):
		_ = view.SetTheme(cli.ThemeBrown)
	}
	handler := clitransport.New(svc, view)

	view.ShowWelcome()
	handler.Run() // All game loop logic is in the handler
}
