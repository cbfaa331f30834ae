package update

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

type historyState struct {
	Lines []string `json:"lines"`
}

func (m *Model) persistHistory() error {
	if m.historyPath == "" {
		return nil
	}
	dir := filepath.Dir(m.historyPath)
	if dir != "." && dir != "" {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(historyState{Lines: m.History}, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.historyPath + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, append(payload, '\n'), 0o600); err != nil {
		return err
	}
	return m.fs.Rename(tmp, m.historyPath)
}

func loadHistory(fs afero.Fs, path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var state historyState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(state.Lines))
	for _, line := range state.Lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m *Model) remember(line string) {
	if n := len(m.History); n > 0 && m.History[n-1] == line {
		m.historyPos = len(m.History)
		return
	}
	m.History = append(m.History, line)
	if len(m.History) > m.historyLimit {
		m.History = m.History[len(m.History)-m.historyLimit:]
	}
	m.historyPos = len(m.History)
	if err := m.persistHistory(); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("history not saved: %v", err), IsError: true}
	}
}

func (m *Model) recall(step int) {
	if len(m.History) == 0 {
		return
	}
	pos := m.historyPos + step
	if pos < 0 {
		pos = 0
	}
	if pos >= len(m.History) {
		m.historyPos = len(m.History)
		m.input.SetValue("")
		return
	}
	m.historyPos = pos
	m.input.SetValue(m.History[pos])
	m.input.CursorEnd()
}
