package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/stepjump/internal/step"
)

var (
	jumpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	posStyle  = lipgloss.NewStyle().Faint(true)
	msgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	kindStyles = map[step.Kind]lipgloss.Style{
		step.Given: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		step.When:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		step.Then:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		step.Step:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	}
)

func position(file string, line int) string {
	return posStyle.Render(fmt.Sprintf("%s:%d", file, line))
}

// JumpLine announces a direct jump.
func JumpLine(w io.Writer, file string, line int) {
	fmt.Fprintln(w, jumpStyle.Render("jump")+"  "+position(file, line))
}

// ListRow is one entry of a location list.
func ListRow(w io.Writer, file string, line int, text string) {
	fmt.Fprintln(w, position(file, line)+"  "+text)
}

func MessageLine(w io.Writer, msg string) {
	fmt.Fprintln(w, msgStyle.Render(msg))
}

// StepRow prints a step location with its kind padded to a column.
func StepRow(w io.Writer, loc step.Location) {
	kind := string(loc.Kind)
	badge := kindStyles[loc.Kind].Render(kind) + strings.Repeat(" ", max(0, 5-len(kind)))
	fmt.Fprintln(w, badge+"  "+position(loc.File, loc.Line)+"  "+loc.Desc)
}

func SummaryLine(w io.Writer, count int, noun string) {
	if count != 1 {
		noun += "s"
	}
	fmt.Fprintf(w, "%d %s\n", count, noun)
}
