// Package watch remembers the last classification of every scheduled ticker
// so that notifications can lead with what changed.
package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"StockAnalyzer/internal/model"
)

// Manager guards the watch state and persists it after every update.
// An empty file path keeps the state in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *model.WatchState
	filePath string
}

// NewManager creates a Manager, loading state from disk when a path is given.
func NewManager(filePath string) (*Manager, error) {
	state := &model.WatchState{Tickers: map[string]model.SignalSnapshot{}}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load watch state: %w", err)
		}
		state = loaded
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Get returns the last snapshot for symbol.
func (m *Manager) Get(symbol string) (model.SignalSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.state.Tickers[symbol]
	return s, ok
}

// Update stores the classification in a, observed at at, and returns a
// description of every signal that differs from the previous snapshot. The
// first sighting of a ticker reports no changes.
func (m *Manager) Update(a *model.Analysis, at time.Time) []string {
	next := model.SignalSnapshot{
		Trend:     a.Trend,
		RSIZone:   a.RSIZone,
		MACDBias:  a.MACDBias,
		Close:     a.Stats.LatestClose,
		UpdatedAt: at,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, seen := m.state.Tickers[a.Symbol]
	m.state.Tickers[a.Symbol] = next
	if err := m.save(); err != nil {
		slog.Error("save watch state", "error", err)
	}
	if !seen {
		return nil
	}

	var changes []string
	if prev.Trend != next.Trend {
		changes = append(changes, fmt.Sprintf("trend %s → %s", prev.Trend, next.Trend))
	}
	if prev.RSIZone != next.RSIZone {
		changes = append(changes, fmt.Sprintf("RSI zone %s → %s", prev.RSIZone, next.RSIZone))
	}
	if prev.MACDBias != next.MACDBias {
		changes = append(changes, fmt.Sprintf("MACD bias %s → %s", prev.MACDBias, next.MACDBias))
	}
	if a.Crossover != model.CrossNone {
		changes = append(changes, fmt.Sprintf("%s MACD crossover", a.Crossover))
	}
	return changes
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}
