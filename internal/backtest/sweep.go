package backtest

import (
	"context"
	"sort"

	"FundingArbBot/internal/operations/history"
	"FundingArbBot/internal/signals"
	"FundingArbBot/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ParamSet is one point of a sweep grid
type ParamSet struct {
	MinAPR           float64 `json:"minAPR"`
	RiskThreshold    float64 `json:"riskThreshold"`
	MaxPositions     int     `json:"maxPositions"`
	VolatilityFilter bool    `json:"volatilityFilter"`
	MomentumFilter   bool    `json:"momentumFilter"`
}

// SweepResult ties one parameter combination to its run outcome and score
type SweepResult struct {
	RunID   string   `json:"runId"`
	Params  ParamSet `json:"params"`
	Summary Summary  `json:"summary"`
	Score   float64  `json:"score"`
}

// BuildGrid expands per-parameter value lists into their cross product,
// holding the base config's filter flags fixed
func BuildGrid(base Config, minAPRs, riskThresholds []float64, maxPositions []int) []ParamSet {
	if len(minAPRs) == 0 {
		minAPRs = []float64{base.MinAPR}
	}
	if len(riskThresholds) == 0 {
		riskThresholds = []float64{base.RiskThreshold}
	}
	if len(maxPositions) == 0 {
		maxPositions = []int{base.MaxPositions}
	}

	var grid []ParamSet
	for _, apr := range minAPRs {
		for _, risk := range riskThresholds {
			for _, max := range maxPositions {
				grid = append(grid, ParamSet{
					MinAPR:           apr,
					RiskThreshold:    risk,
					MaxPositions:     max,
					VolatilityFilter: base.VolatilityFilter,
					MomentumFilter:   base.MomentumFilter,
				})
			}
		}
	}
	return grid
}

// Sweep evaluates every parameter set as an independent run. Runs share only
// the immutable historical data, so they fan out over a bounded worker pool
// with no locking. Results come back sorted best score first.
func Sweep(ctx context.Context, data *history.HistoricalData, base Config, grid []ParamSet, workers int, provider signals.Provider, predictor signals.Predictor) ([]SweepResult, error) {
	if workers <= 0 {
		workers = 1
	}
	if len(grid) == 0 {
		return nil, nil
	}

	results := make([]SweepResult, len(grid))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, params := range grid {
		i, params := i, params
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cfg := base
			cfg.MinAPR = params.MinAPR
			cfg.RiskThreshold = params.RiskThreshold
			cfg.MaxPositions = params.MaxPositions
			cfg.VolatilityFilter = params.VolatilityFilter
			cfg.MomentumFilter = params.MomentumFilter

			var engine *Engine
			if provider != nil {
				engine = NewSignalEngine(cfg, data, provider, predictor)
			} else {
				engine = NewEngine(cfg, data)
			}

			result, err := engine.Run()
			if err != nil {
				return err
			}

			results[i] = SweepResult{
				RunID:   uuid.NewString(),
				Params:  params,
				Summary: result.Summary,
				Score:   Score(result.Summary),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	logger.Info("Sweep finished",
		zap.Int("combinations", len(grid)),
		zap.Float64("bestScore", results[0].Score))
	return results, nil
}
