package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"StockAnalyzer/internal/model"
)

// LoadState reads the watch state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*model.WatchState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.WatchState{Tickers: map[string]model.SignalSnapshot{}}, nil
		}
		return nil, err
	}
	var state model.WatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Tickers == nil {
		state.Tickers = map[string]model.SignalSnapshot{}
	}
	return &state, nil
}

// SaveState writes the watch state to a JSON file, creating its directory.
func SaveState(filePath string, state *model.WatchState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
