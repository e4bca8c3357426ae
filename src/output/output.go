package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Colors for terminal output.
var (
	styleBold  = lipgloss.NewStyle().Bold(true)
	styleCyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleGray  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleGreen = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleRed   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleAmber = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Printer writes progress lines as operations happen.
type Printer struct {
	Writer io.Writer
	Color  bool
}

// NewPrinter creates a printer writing to w with color auto-detection.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		Writer: w,
		Color:  UseColor(),
	}
}

// Discard returns a printer that drops everything.
func Discard() *Printer {
	return &Printer{Writer: io.Discard}
}

// Line writes one uncolored line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.Writer, format+"\n", args...)
}

// Executing announces an external command.
func (p *Printer) Executing(command, dir string) {
	fmt.Fprintf(p.Writer, "Executing %s in %s...\n", p.colorize(fmt.Sprintf("%q", command), styleCyan), dir)
}

// Cloning announces the start of a module fetch.
func (p *Printer) Cloning(repository string) {
	fmt.Fprintf(p.Writer, "Cloning: %s\n", repository)
}

// Cloned reports the resolved checkout target of a vendored module.
func (p *Printer) Cloned(name, target string) {
	fmt.Fprintf(p.Writer, "Cloned: %s (%s)\n", p.colorize(name, styleBold), p.colorize(target, styleGreen))
}

// Cleaned reports a removed module destination.
func (p *Printer) Cleaned(name string) {
	fmt.Fprintf(p.Writer, "Cleaned %s\n", name)
}

// Skipped reports a recoverable per-module skip.
func (p *Printer) Skipped(format string, args ...any) {
	fmt.Fprintln(p.Writer, p.colorize(fmt.Sprintf(format, args...), styleAmber))
}

// Quack announces a nested invocation rooted at dir.
func (p *Printer) Quack(dir string) {
	fmt.Fprintf(p.Writer, "Quack: %s\n", p.colorize(dir, styleBold))
}

// Summary prints the final statistics line.
func (p *Printer) Summary(tasks, dependencies int) {
	fmt.Fprintf(p.Writer, "%d task(s) completed with %d dependencies.\n", tasks, dependencies)
}

func (p *Printer) colorize(text string, style lipgloss.Style) string {
	if !p.Color {
		return text
	}
	return style.Render(text)
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal()
}
