// Package display renders server responses for the debugging client
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}

// RenderBoard writes the server's ASCII board with white pieces in blue,
// black pieces in red and coordinates in cyan
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")
	last := len(lines) - 1

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fileLine := i == 0 || i == last

		var sb strings.Builder
		for _, ch := range line {
			switch {
			case fileLine && ch >= 'a' && ch <= 'h':
				sb.WriteString(Cyan + string(ch) + Reset)
			case ch >= 'A' && ch <= 'Z':
				sb.WriteString(Blue + string(ch) + Reset)
			case ch >= 'a' && ch <= 'z':
				sb.WriteString(Red + string(ch) + Reset)
			case ch >= '1' && ch <= '8':
				sb.WriteString(Cyan + string(ch) + Reset)
			default:
				sb.WriteRune(ch)
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// PrettyPrintJSON writes v as indented JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}
