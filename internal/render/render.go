// Package render prints analysis reports for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

const defaultWrap = 80

// Options controls how a report is written.
type Options struct {
	// Raw writes the markdown unmodified.
	Raw bool
	// Style is a glamour style name; empty selects one from the terminal background.
	Style string
	Wrap  int
}

// Report writes markdown to w, styled through glamour when w is a terminal
// and raw output was not requested.
func Report(w io.Writer, markdown string, opts Options) error {
	if opts.Raw || (opts.Style == "" && !isTerminal(w)) {
		_, err := io.WriteString(w, ensureNewline(markdown))
		return err
	}

	out, err := Markdown(markdown, opts.Style, opts.Wrap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Markdown renders markdown with the given glamour style.
func Markdown(markdown, style string, wrap int) (string, error) {
	if wrap <= 0 {
		wrap = defaultWrap
	}

	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStylePath(style)
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// Section prefixes body with a level-two markdown heading.
func Section(title, body string) string {
	return "## " + title + "\n\n" + strings.TrimSpace(body) + "\n"
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
