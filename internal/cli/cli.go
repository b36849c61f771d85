// FILE: internal/cli/cli.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chesscore/internal/board"
	"chesscore/internal/core"
	"chesscore/internal/game"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdResume
	CmdMove
	CmdMoves
	CmdUndo
	CmdColor
	CmdVerbose
	CmdHistory
	CmdBoard
	CmdFEN
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

// palette holds the escape sequences of a board theme. The zero palette
// renders plain text.
type palette struct {
	light, dark  string // square backgrounds
	white, black string // piece foregrounds
}

const (
	ansiReset      = "\033[0m"
	ansiWhitePiece = "\033[97m"
	ansiBlackPiece = "\033[30m"
)

func bg256(code int) string {
	return fmt.Sprintf("\033[48;5;%dm", code)
}

var themes = map[ColorTheme]palette{
	ThemeOff:   {},
	ThemeBrown: {light: bg256(230), dark: bg256(94), white: ansiWhitePiece, black: ansiBlackPiece},
	ThemeGreen: {light: bg256(157), dark: bg256(22), white: ansiWhitePiece, black: ansiBlackPiece},
	ThemeGray:  {light: bg256(251), dark: bg256(240), white: ansiWhitePiece, black: ansiBlackPiece},
}

// LineReader supplies one line of input per call, showing the current prompt.
// *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// scannerReader is a LineReader over a plain stream
type scannerReader struct {
	scanner *bufio.Scanner
	output  io.Writer
	prompt  string
}

// NewScannerReader reads lines from input and writes prompts to output
func NewScannerReader(input io.Reader, output io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(input), output: output}
}

func (s *scannerReader) SetPrompt(prompt string) {
	s.prompt = prompt
}

func (s *scannerReader) Readline() (string, error) {
	fmt.Fprint(s.output, s.prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand reads a command synchronously; end of input reads as quit
func (c *CLI) GetCommand() (*Command, error) {
	line, err := c.input.Readline()
	if err == io.EOF {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return &Command{Type: CmdNone}, nil
	}

	return c.parseCommand(input), nil
}

func (c *CLI) parseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		return &Command{Type: CmdResume, Args: args, Raw: input}
	case "moves":
		return &Command{Type: CmdMoves, Args: args}
	case "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "board":
		return &Command{Type: CmdBoard}
	case "fen":
		return &Command{Type: CmdFEN}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	default:
		// Assume it's a move
		return &Command{Type: CmdMove, Args: parts, Raw: input}
	}
}

// ParseMove accepts "e2e4", "e2-e4" and "e2 e4"
func ParseMove(args []string) (from, to core.Position, err error) {
	text := strings.ReplaceAll(strings.Join(args, ""), "-", "")
	if len(text) != 4 {
		return from, to, fmt.Errorf("invalid move format %q, expected e.g. e2e4", strings.Join(args, " "))
	}
	if from, err = core.ParseSquare(text[:2]); err != nil {
		return from, to, err
	}
	if to, err = core.ParseSquare(text[2:]); err != nil {
		return from, to, err
	}
	return from, to, nil
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v\n", err))
}

func (c *CLI) ShowPrompt(prompt string) {
	c.input.SetPrompt(prompt)
}

// DisplayBoard prints b from White's side, rank 8 at the top
func (c *CLI) DisplayBoard(b *board.Board) {
	pal := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")
	for row := 0; row < 8; row++ {
		rank := 8 - row
		fmt.Fprintf(&sb, "%d ", rank)
		for col := 0; col < 8; col++ {
			piece, occupied := b.At(core.Pos(row, col))

			if c.theme == ThemeOff {
				if occupied {
					fmt.Fprintf(&sb, "%c ", piece.Symbol())
				} else {
					sb.WriteString(". ")
				}
				continue
			}

			square := pal.dark
			if (row+col)%2 == 0 {
				square = pal.light
			}
			switch {
			case !occupied:
				sb.WriteString(square + "  " + ansiReset)
			case piece.Color == core.ColorWhite:
				fmt.Fprintf(&sb, "%s%s%c %s", square, pal.white, piece.Symbol(), ansiReset)
			default:
				fmt.Fprintf(&sb, "%s%s%c %s", square, pal.black, piece.Symbol(), ansiReset)
			}
		}
		fmt.Fprintf(&sb, " %d\n", rank)
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

var helpText = strings.TrimSpace(`
Commands:
  new                start a game from the standard position
  resume <FEN>       start a game from a FEN position
  e2e4 | e2-e4       move a piece (the side to move)
  moves <square>     legal destinations of the piece on a square
  undo [n]           take back the last n plies (default 1)
  board              print the board
  fen                print the position as FEN
  history            print the move list
  color <theme>      board colors: off, brown, green, gray
  verbose            toggle move echo
  help, ?            this text
  quit, exit         leave
`)

func (c *CLI) ShowHelp() {
	c.ShowMessage(helpText)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new, resume <FEN>, <move>, moves, undo, quit/exit, verbose, history, help/?")
	c.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w K - 0 1' to start from a puzzle.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(g *game.Game) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s\n", g.InitialFEN()))

	moves := g.MoveLog()
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		white := moves[i].From.String() + moves[i].To.String()
		if i+1 < len(moves) {
			black := moves[i+1].From.String() + moves[i+1].To.String()
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", moveNum, white, black))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", moveNum, white))
		}
	}
	c.ShowMessage(fmt.Sprintf("\nCurrent FEN: %s\n", g.FEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s\n", g.State()))
}

func (c *CLI) ShowMove(color core.Color, piece string, from, to core.Position) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("%s: %s %s-%s\n", color.Name(), piece, from, to))
	}
}

func (c *CLI) ShowLegalMoves(from core.Position, moves []core.Position) {
	if len(moves) == 0 {
		c.ShowMessage(fmt.Sprintf("No legal moves from %s", from))
		return
	}
	squares := make([]string, len(moves))
	for i, m := range moves {
		squares[i] = m.String()
	}
	c.ShowMessage(fmt.Sprintf("%s: %s", from, strings.Join(squares, " ")))
}

func (c *CLI) ShowGameOver(state core.State) {
	c.ShowMessage(fmt.Sprintf("\nCheckmate. Game Over: %s\n", state))
	c.ShowMessage("Take back with 'undo' or start a new game with 'new' or 'resume'.")
}
