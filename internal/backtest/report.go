package backtest

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteReport dumps the result bundle as indented JSON. Formatting and
// charting belong to downstream consumers.
func WriteReport(path string, result *Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing report %s: %w", path, err)
	}
	return nil
}

// WriteSweepReport dumps sweep results, best score first
func WriteSweepReport(path string, results []SweepResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding sweep report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing sweep report %s: %w", path, err)
	}
	return nil
}
