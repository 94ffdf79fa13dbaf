package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// RunFile is the YAML document driving a backtest invocation.
type RunFile struct {
	Run   RunParams   `yaml:"run"`
	Sweep SweepParams `yaml:"sweep"`
}

type RunParams struct {
	InitialCapital   float64 `yaml:"initial_capital"`
	MinAPR           float64 `yaml:"min_apr"`
	RiskThreshold    float64 `yaml:"risk_threshold"`
	MaxPositions     int     `yaml:"max_positions"`
	VolatilityFilter bool    `yaml:"volatility_filter"`
	MomentumFilter   bool    `yaml:"momentum_filter"`
	UseSignals       bool    `yaml:"use_signals"`
	StartDate        string  `yaml:"start_date"`
	EndDate          string  `yaml:"end_date"`
}

type SweepParams struct {
	Enabled       bool      `yaml:"enabled"`
	Workers       int       `yaml:"workers"`
	MinAPR        []float64 `yaml:"min_apr"`
	RiskThreshold []float64 `yaml:"risk_threshold"`
	MaxPositions  []int     `yaml:"max_positions"`
}

// LoadRunFile reads run parameters from a YAML file and applies defaults
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading run config %s: %w", path, err)
	}

	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("error parsing run config %s: %w", path, err)
	}

	rf.applyDefaults()
	return &rf, nil
}

func (rf *RunFile) applyDefaults() {
	if rf.Run.InitialCapital <= 0 {
		rf.Run.InitialCapital = 10000
	}
	if rf.Run.MinAPR <= 0 {
		// Signal-gated runs can afford a lower entry bar
		if rf.Run.UseSignals {
			rf.Run.MinAPR = 3
		} else {
			rf.Run.MinAPR = 8
		}
	}
	if rf.Run.RiskThreshold <= 0 {
		rf.Run.RiskThreshold = 0.6
	}
	if rf.Run.MaxPositions <= 0 {
		rf.Run.MaxPositions = 5
	}
	if rf.Sweep.Workers <= 0 {
		rf.Sweep.Workers = 4
	}
}

// Window parses the configured date range (inclusive days, UTC)
func (rf *RunFile) Window() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", rf.Run.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", rf.Run.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", rf.Run.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", rf.Run.EndDate, err)
	}
	return start.UTC(), end.UTC(), nil
}
