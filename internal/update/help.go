package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/salama135/discord-bots/internal/engine"
	"github.com/salama135/discord-bots/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Send, Action: "send"},
		{Key: m.Keys.HistoryPrev + "/" + m.Keys.HistoryNext, Action: "history"},
		{Key: "pgup/pgdown", Action: "scroll"},
		{Key: m.Keys.Clear, Action: "clear transcript"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var b strings.Builder
	b.WriteString(m.helpModel.View(helpKeyMap{short: bindings, full: [][]key.Binding{bindings}}))
	b.WriteString("\ncommands:")
	for _, h := range engine.CommandReference {
		fmt.Fprintf(&b, " %s", strings.Fields(h.Usage)[0])
	}
	return views.RenderPanel(b.String(), m.width)
}

func (m Model) footer() string {
	return fmt.Sprintf("keys: %s send | %s/%s history | %s clear | %s help | %s quit",
		m.Keys.Send, m.Keys.HistoryPrev, m.Keys.HistoryNext, m.Keys.Clear, m.Keys.Help, m.Keys.Quit)
}
