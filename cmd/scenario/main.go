// Package main provides the what-if scenario analysis CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/whatif-futures/internal/config"
	"github.com/yourusername/whatif-futures/internal/database"
	"github.com/yourusername/whatif-futures/internal/generator"
	"github.com/yourusername/whatif-futures/internal/logger"
	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/repository"
	"github.com/yourusername/whatif-futures/internal/scenario"
	"github.com/yourusername/whatif-futures/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	portfolioArg string
	synthetic    bool
	syntheticN   int
	seed         int64
	instrument   string
	scenarioName string
	outputCSV    string
	persist      bool

	stopLossPct   float64
	takeProfitPct float64
	minHold       float64
	maxHold       float64
	excludeDays   []string
	hoursStart    float64
	hoursEnd      float64
	allocationPct float64
	slippageTicks int
	commission    float64
	multiplier    float64
	maxConcurrent int

	appLogger *logrus.Logger
	cfg       *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&portfolioArg, "portfolio", "", "Portfolio UUID to analyze")
	rootCmd.PersistentFlags().BoolVar(&synthetic, "synthetic", false, "Use generated synthetic data instead of the database")
	rootCmd.PersistentFlags().IntVar(&syntheticN, "synthetic-trades", 60, "Number of synthetic trades to generate")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for synthetic data generation")
	rootCmd.PersistentFlags().StringVar(&instrument, "instrument", "MES", "Instrument for synthetic data")

	runCmd.Flags().StringVar(&scenarioName, "name", "What-If", "Scenario name")
	runCmd.Flags().Float64Var(&stopLossPct, "stop-loss-pct", 0, "Stop loss as percent of entry price")
	runCmd.Flags().Float64Var(&takeProfitPct, "take-profit-pct", 0, "Take profit as percent of entry price")
	runCmd.Flags().Float64Var(&minHold, "min-hold-minutes", 0, "Drop trades held less than this many minutes")
	runCmd.Flags().Float64Var(&maxHold, "max-hold-minutes", 0, "Force exit after this many minutes")
	runCmd.Flags().StringSliceVar(&excludeDays, "exclude-days", nil, "Weekday names to exclude (e.g. Monday)")
	runCmd.Flags().Float64Var(&hoursStart, "hours-start", -1, "Start of allowed entry window (decimal hours)")
	runCmd.Flags().Float64Var(&hoursEnd, "hours-end", -1, "End of allowed entry window (decimal hours)")
	runCmd.Flags().Float64Var(&allocationPct, "allocation-pct", 0, "Capital allocation percent")
	runCmd.Flags().IntVar(&slippageTicks, "slippage-ticks", 0, "Adverse slippage in ticks per side")
	runCmd.Flags().Float64Var(&commission, "commission", 0, "Commission per contract per trade")
	runCmd.Flags().Float64Var(&multiplier, "capital-multiplier", 0, "Scale effective capital")
	runCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Cap on simultaneous open positions")
	runCmd.Flags().StringVar(&outputCSV, "csv", "", "Write comparison matrix to CSV path")
	runCmd.Flags().BoolVar(&persist, "save", false, "Persist scenarios to the database")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(baselineCmd)
}

var rootCmd = &cobra.Command{
	Use:     "scenario",
	Short:   "What-if analysis for futures trade histories",
	Long:    `Re-simulates a recorded futures trade history under altered exit, filter and sizing rules and compares performance metrics against the actual results.`,
	Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Show performance metrics for the recorded trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBaseline()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a what-if scenario and compare against the baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenario()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel)
	return nil
}

// loadData assembles trades and candles either synthetically or from storage
func loadData(ctx context.Context) ([]*models.Trade, []*models.Candle, func(), error) {
	if synthetic {
		gen := generator.New(seed)
		end := time.Now().UTC().Truncate(24 * time.Hour)
		start := end.AddDate(0, 0, -45)
		candles := gen.Candles(instrument, models.SpecFor(instrument).MarginInitial*4, start, end)
		trades := gen.Trades(uuid.New(), instrument, candles, syntheticN)
		return trades, candles, func() {}, nil
	}

	if portfolioArg == "" {
		return nil, nil, nil, fmt.Errorf("--portfolio is required unless --synthetic is set")
	}
	portfolioID, err := uuid.Parse(portfolioArg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid portfolio id: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	svc := service.NewAnalysisService(repos, scenario.NewSimulator(appLogger), appLogger)
	data, err := svc.LoadPortfolio(ctx, portfolioID)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return data.Trades, data.Candles, db.Close, nil
}

func runBaseline() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	trades, _, cleanup, err := loadData(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	baseline := scenario.NewBaseline(trades, cfg.Analysis.StartingCapital)
	rows := scenario.BuildComparisonMatrix([]*scenario.Scenario{baseline}, scenario.DefaultComparisonKeys)
	fmt.Print(scenario.GenerateConsoleReport(rows))
	return nil
}

func buildParameters() scenario.Parameters {
	params := scenario.DefaultParameters()

	if stopLossPct > 0 {
		params.StopLossPct = &stopLossPct
	}
	if takeProfitPct > 0 {
		params.TakeProfitPct = &takeProfitPct
	}
	if minHold > 0 {
		params.MinHoldMinutes = &minHold
	}
	if maxHold > 0 {
		params.MaxHoldMinutes = &maxHold
	}
	if len(excludeDays) > 0 {
		params.ExcludeDays = excludeDays
	}
	if hoursStart >= 0 && hoursEnd >= 0 {
		params.TradeHoursStart = &hoursStart
		params.TradeHoursEnd = &hoursEnd
	}
	if allocationPct > 0 {
		params.CapitalAllocationPct = allocationPct
	}
	if slippageTicks > 0 {
		params.SlippageTicks = slippageTicks
	}
	if commission > 0 {
		params.CommissionPerContract = commission
	}
	if multiplier > 0 {
		params.CapitalMultiplier = multiplier
	}
	if maxConcurrent > 0 {
		params.MaxConcurrentPositions = &maxConcurrent
	}

	return params
}

func runScenario() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	trades, candles, cleanup, err := loadData(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	capital := cfg.Analysis.StartingCapital
	cacheTTL := time.Duration(cfg.Analysis.ResultCacheTTLSeconds) * time.Second

	book := scenario.NewBook(cacheTTL)
	book.SetBaseline(scenario.NewBaseline(trades, capital))

	sim := scenario.NewSimulator(appLogger)
	params := buildParameters()

	scn, err := book.Run(sim, scenarioName, params, trades, candles, capital)
	if err != nil {
		return fmt.Errorf("scenario run failed: %w", err)
	}

	appLogger.WithFields(logrus.Fields{
		"scenario": scn.Name,
		"trades":   len(scn.Trades),
	}).Info("Scenario completed")

	rows := scenario.BuildComparisonMatrix(book.List(), scenario.DefaultComparisonKeys)
	fmt.Print(scenario.GenerateConsoleReport(rows))

	if outputCSV != "" {
		if err := scenario.GenerateCSVExport(rows, scenario.DefaultComparisonKeys, outputCSV); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		fmt.Printf("Comparison written to %s\n", outputCSV)
	}

	if persist && !synthetic {
		portfolioID, _ := uuid.Parse(portfolioArg)
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect for persistence: %w", err)
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return err
		}
		svc := service.NewAnalysisService(repos, sim, appLogger)
		if err := svc.Persist(ctx, portfolioID, book); err != nil {
			return err
		}
		appLogger.Info("Scenarios persisted")
	}

	return nil
}
