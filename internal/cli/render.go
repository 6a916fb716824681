package cli

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/roach88/chloe/internal/bot"
)

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useColor decides whether text output to w gets ANSI colours. NO_COLOR and
// non-terminal writers turn it off.
func useColor(w io.Writer) bool {
	return !color.NoColor && isTerminal(w)
}

// writeReplyText prints reply in the plain text layout, colouring embed bars
// with the embed colour when out.Color is set.
func writeReplyText(out *OutputFormatter, reply *bot.Reply) error {
	text := reply.String()
	if out.Color && reply != nil && reply.Embed != nil {
		text = colorizeEmbed(text, reply.Embed)
	}
	_, err := io.WriteString(out.Writer, text)
	return err
}

// colorizeEmbed paints the "|" bar of each embed line in the embed colour and
// bolds the title. Lines before the embed (the reply text) are left alone.
func colorizeEmbed(text string, e *bot.Embed) string {
	bar := color.RGB((e.Color>>16)&0xFF, (e.Color>>8)&0xFF, e.Color&0xFF)
	bar.EnableColor()
	title := color.New(color.Bold)
	title.EnableColor()

	lines := strings.SplitAfter(text, "\n")
	inEmbed := false
	for i, line := range lines {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		rest := strings.TrimPrefix(line, "|")
		if !inEmbed {
			inEmbed = true
			body := strings.TrimSuffix(strings.TrimPrefix(rest, " "), "\n")
			lines[i] = bar.Sprint("|") + " " + title.Sprint(body) + "\n"
			continue
		}
		lines[i] = bar.Sprint("|") + rest
	}
	return strings.Join(lines, "")
}
