// Package main implements an interactive debugging client for the chess server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chesscore/internal/client/api"
	"chesscore/internal/client/commands"
	"chesscore/internal/client/display"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Chess server base URL")
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     ".chess_client_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	out := rl.Stdout()
	s := &commands.Session{
		Client: api.New(*apiURL, out),
		Out:    out,
	}

	fmt.Fprintf(out, "%sChess Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(out, "%sAPI: %s%s\n", display.Cyan, s.Client.BaseURL, display.Reset)
	fmt.Fprintf(out, "Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Trailing -v turns on request/response tracing for one command
		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		if !registry.Execute(line) {
			break
		}
	}
}

func buildPrompt(s *commands.Session) string {
	prompt := "chess"
	if s.CurrentGame != "" {
		prompt += display.Yellow + " [" + display.White + s.CurrentGame[:8] + display.Yellow + "]"
	}
	if st := s.State; st != nil {
		if st.State == "ongoing" {
			prompt += " - Turn:" + display.ColorForTurn(st.Turn)
		} else {
			prompt += " - " + st.State
		}
	}
	return display.Prompt(prompt)
}
