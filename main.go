package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FundingArbBot/config"
	"FundingArbBot/internal/backtest"
	"FundingArbBot/internal/handlers"
	"FundingArbBot/internal/models"
	"FundingArbBot/internal/operations/binance"
	"FundingArbBot/internal/operations/history"
	"FundingArbBot/internal/repositories"
	"FundingArbBot/internal/signals"
	"FundingArbBot/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger.Init()
	defer logger.GetLogger().Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	runFile, err := config.LoadRunFile(cfg.RunFile)
	if err != nil {
		logger.Fatal("Failed to load run config", zap.Error(err))
	}
	startTime, endTime, err := runFile.Window()
	if err != nil {
		logger.Fatal("Invalid backtest window", zap.Error(err))
	}

	// Setup database
	db := setupDatabase(cfg.Database)

	// Initialize repositories
	fundingRepo := repositories.NewFundingRateRepository(db)
	priceRepo := repositories.NewPriceRepository(db)

	// Setup context for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Interrupted, cancelling run")
		cancel()
	}()

	// Fill the local cache for the requested window
	client := binance.NewBinanceClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey)
	dataHandler := handlers.NewDataHandler(client, fundingRepo, priceRepo, cfg.Symbols)
	if err := dataHandler.Sync(ctx, startTime, endTime); err != nil {
		logger.Fatal("Failed to sync historical data", zap.Error(err))
	}

	// Load the window into memory; an empty window is fatal
	provider := history.NewProvider(fundingRepo, priceRepo, cfg.Symbols)
	data, err := provider.Load(startTime, endTime)
	if err != nil {
		logger.Fatal("Failed to load historical data", zap.Error(err))
	}

	// Assemble the run configuration
	btConfig := backtest.NewConfig()
	btConfig.InitialCapital = runFile.Run.InitialCapital
	btConfig.MinAPR = runFile.Run.MinAPR
	btConfig.RiskThreshold = runFile.Run.RiskThreshold
	btConfig.MaxPositions = runFile.Run.MaxPositions
	btConfig.VolatilityFilter = runFile.Run.VolatilityFilter
	btConfig.MomentumFilter = runFile.Run.MomentumFilter
	btConfig.StartTime = startTime
	btConfig.EndTime = endTime

	var signalProvider signals.Provider
	var signalPredictor signals.Predictor
	if runFile.Run.UseSignals {
		statistical := signals.NewStatisticalProvider(data, btConfig.RiskThreshold)
		signalProvider = statistical
		signalPredictor = statistical
	}

	if runFile.Sweep.Enabled {
		runSweep(ctx, data, btConfig, runFile, signalProvider, signalPredictor, cfg.ReportPath)
		return
	}

	var engine *backtest.Engine
	if signalProvider != nil {
		engine = backtest.NewSignalEngine(btConfig, data, signalProvider, signalPredictor)
	} else {
		engine = backtest.NewEngine(btConfig, data)
	}

	result, err := engine.Run()
	if err != nil {
		logger.Fatal("Backtest failed", zap.Error(err))
	}

	printResults(result)

	if err := backtest.WriteReport(cfg.ReportPath, result); err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}
	logger.Info("Report written", zap.String("path", cfg.ReportPath))
}

func runSweep(ctx context.Context, data *history.HistoricalData, base backtest.Config, runFile *config.RunFile, provider signals.Provider, predictor signals.Predictor, reportPath string) {
	grid := backtest.BuildGrid(base, runFile.Sweep.MinAPR, runFile.Sweep.RiskThreshold, runFile.Sweep.MaxPositions)
	results, err := backtest.Sweep(ctx, data, base, grid, runFile.Sweep.Workers, provider, predictor)
	if err != nil {
		logger.Fatal("Sweep failed", zap.Error(err))
	}

	fmt.Println("\n=== Sweep Results ===")
	for i, r := range results {
		if i >= 10 {
			break
		}
		fmt.Printf("%2d. score=%.4f minAPR=%.1f risk=%.2f maxPos=%d return=%.2f%% dd=%.2f%% trades=%d\n",
			i+1, r.Score, r.Params.MinAPR, r.Params.RiskThreshold, r.Params.MaxPositions,
			r.Summary.TotalReturnPct, r.Summary.MaxDrawdownPct, r.Summary.TotalTrades)
	}

	if err := backtest.WriteSweepReport(reportPath, results); err != nil {
		logger.Fatal("Failed to write sweep report", zap.Error(err))
	}
	logger.Info("Sweep report written", zap.String("path", reportPath))
}

func printResults(result *backtest.Result) {
	s := result.Summary
	fmt.Println("\n=== Backtest Results ===")
	fmt.Printf("Initial Capital: $%.2f\n", s.InitialCapital)
	fmt.Printf("Final Capital: $%.2f\n", s.FinalCapital)
	fmt.Printf("Total Return: %.2f%% ($%.2f)\n", s.TotalReturnPct, s.TotalReturnDollars)
	fmt.Printf("Total Trades: %d\n", s.TotalTrades)
	fmt.Printf("Winning Trades: %d (%.2f%%)\n", s.WinningTrades, s.WinRatePct)
	fmt.Printf("Max Drawdown: %.2f%%\n", s.MaxDrawdownPct)
	fmt.Printf("Total Days: %.1f\n", s.TotalDays)
}

func setupDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto migrate database schemas
	if err := db.AutoMigrate(&models.FundingRate{}, &models.Price{}); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	return db
}
