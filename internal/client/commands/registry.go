// Package commands implements the debugging client's command set
package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"chesscore/internal/client/api"
	"chesscore/internal/client/display"
	"chesscore/internal/core"
)

// ErrExit is returned by the exit command
var ErrExit = errors.New("exit")

// Session is the client state carried between commands
type Session struct {
	Client        *api.Client
	Out           io.Writer
	Verbose       bool
	CurrentGame   string
	LastMoveCount int
	State         *core.GameResponse
}

// SetGame records the latest view of the current game
func (s *Session) SetGame(g *core.GameResponse) {
	s.CurrentGame = g.GameID
	s.LastMoveCount = len(g.Moves)
	s.State = g
}

// ClearGame forgets the current game
func (s *Session) ClearGame() {
	s.CurrentGame = ""
	s.LastMoveCount = 0
	s.State = nil
}

func (s *Session) requireGame() (string, error) {
	if s.CurrentGame == "" {
		return "", fmt.Errorf("no current game, use 'new' or 'join <gameId>'")
	}
	return s.CurrentGame, nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Group       string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Group:       "Utility",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Group:       "Utility",
		Description: "Exit the client",
		Usage:       "exit",
		Handler: func(s *Session, _ []string) error {
			s.printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
			return ErrExit
		},
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. It returns false once the client should exit.
func (r *Registry) Execute(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		r.session.printf("%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		r.session.printf("Type 'help' for available commands\n")
		return true
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	err := cmd.Handler(r.session, parts[1:])
	if errors.Is(err, ErrExit) {
		return false
	}
	if err != nil {
		r.session.printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Details != "" {
			r.session.printf("%sDetails: %s%s\n", display.Red, apiErr.Details, display.Reset)
		}
	}
	return true
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		s.printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			s.printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		s.printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	groups := make(map[string][]*Command)
	for name, cmd := range r.commands {
		if name == cmd.Name {
			groups[cmd.Group] = append(groups[cmd.Group], cmd)
		}
	}

	s.printf("\n%sAvailable Commands:%s\n", display.Cyan, display.Reset)
	for _, group := range []string{"Game", "Utility"} {
		cmds := groups[group]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		s.printf("\n%s%s Commands:%s\n", display.Yellow, group, display.Reset)
		for _, cmd := range cmds {
			s.printf("  [%s%s%s] %-8s %s\n", display.Cyan, cmd.ShortName, display.Reset, cmd.Name, cmd.Description)
		}
	}

	s.printf("\nType 'help <command>' for detailed usage\n")
	s.printf("Add '-v' to any command for verbose output\n")
	return nil
}
