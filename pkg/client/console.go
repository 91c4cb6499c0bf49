package client

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeColor matches the frontend's initial accent color.
const DefaultThemeColor = "#646cff"

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#83715f")).Italic(true)
)

// ConsoleRenderer writes the stream to a terminal: assistant text in
// the current theme color, UI mutations as styled notices.
type ConsoleRenderer struct {
	out io.Writer
}

// NewConsoleRenderer creates a renderer writing to out.
func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

func (c *ConsoleRenderer) themeStyle(state State) lipgloss.Style {
	color := state.ThemeColor
	if color == "" {
		color = DefaultThemeColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (c *ConsoleRenderer) OnStart(state State, model string) {
	fmt.Fprintln(c.out, noticeStyle.Render(fmt.Sprintf("· %s", model)))
}

func (c *ConsoleRenderer) OnTextDelta(state State, delta string) {
	fmt.Fprint(c.out, c.themeStyle(state).Render(delta))
}

func (c *ConsoleRenderer) OnThemeChange(state State, color string) {
	fmt.Fprintln(c.out, noticeStyle.Render(fmt.Sprintf("· theme changed to %s", color)))
}

func (c *ConsoleRenderer) OnButtonAdd(state State, label string) {
	toolbar := ""
	for _, button := range state.Buttons {
		toolbar += fmt.Sprintf("[ %s ] ", button)
	}
	fmt.Fprintln(c.out, noticeStyle.Render("· "+toolbar))
}

func (c *ConsoleRenderer) OnResult(state State, content string) {
	// The full text was already rendered incrementally.
}

func (c *ConsoleRenderer) OnComplete(state State) {
	fmt.Fprintln(c.out)
}

func (c *ConsoleRenderer) OnError(state State, message string) {
	fmt.Fprintln(c.out, errorStyle.Render("error: "+message))
}

var _ Handler = (*ConsoleRenderer)(nil)
