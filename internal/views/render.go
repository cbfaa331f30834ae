package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ChatFrame is one frame of the terminal chat client.
type ChatFrame struct {
	Header     string
	Transcript string
	Input      string
	StatusLine string
	Footer     string
	Width      int
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

func RenderChat(f ChatFrame) string {
	width := f.Width
	if width <= 0 {
		width = 80
	}

	status := statusStyle.Render(f.StatusLine)
	if strings.Contains(strings.ToLower(f.StatusLine), "error") {
		status = errorStyle.Render(f.StatusLine)
	}

	lines := []string{
		headerStyle.Render(f.Header),
		RenderPanel(f.Transcript, width),
		RenderPanel(f.Input, width),
		status,
	}
	if f.Footer != "" {
		lines = append(lines, footerStyle.Render(f.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderPanel wraps body in a rounded border sized to the terminal width.
func RenderPanel(body string, width int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	return panelStyle.Width(inner).Render(body)
}

// RenderUserLine formats a line the local user typed into the transcript.
func RenderUserLine(user, text string) string {
	return userStyle.Render(user+":") + " " + text
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
