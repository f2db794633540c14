package cmd

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/replay/backtest"
	"github.com/rustyeddy/replay/config"
	"github.com/rustyeddy/replay/dashboard"
	"github.com/rustyeddy/replay/feed"
	"github.com/rustyeddy/replay/journal"
	"github.com/rustyeddy/replay/strategies"
	"github.com/rustyeddy/replay/stream"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a bar dataset through a strategy",
	Long: `Backtest replays a CSV bar dataset through the selected strategy and
prints the resulting performance summary.

Example:
  replay backtest --bars data/spy.csv --strategy sma-cross --short 10 --long 30`,
	RunE: runBacktest,
}

var (
	btBarsPath   string
	btConfigPath string
	btStrategy   string
	btShort      int
	btLong       int
	btCapital    float64
	btFee        float64
	btRiskFree   float64
	btInterval   int
	btFrom       string
	btTo         string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (time,instrument,open,high,low,close,volume) (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON config file")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "sma-cross", "strategy name (noop, sma-cross)")
	backtestCmd.Flags().IntVar(&btShort, "short", 10, "sma-cross: short SMA period")
	backtestCmd.Flags().IntVar(&btLong, "long", 30, "sma-cross: long SMA period")
	backtestCmd.Flags().Float64Var(&btCapital, "capital", 100_000, "initial capital")
	backtestCmd.Flags().Float64Var(&btFee, "fee", 1.0, "flat fee per trade")
	backtestCmd.Flags().Float64Var(&btRiskFree, "risk-free", 0.02, "annual risk-free rate for Sharpe")
	backtestCmd.Flags().IntVar(&btInterval, "interval", 1, "equity sampling interval in bars")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start time (RFC3339, optional)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end time (RFC3339, exclusive, optional)")

	backtestCmd.MarkFlagRequired("bars")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if btConfigPath != "" {
		loaded, err := config.LoadFromFile(btConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg.Strategy.Name = btStrategy
		cfg.Strategy.ShortPeriod = btShort
		cfg.Strategy.LongPeriod = btLong
		cfg.Account.InitialCapital = btCapital
		cfg.Backtest.FeePerTrade = btFee
		cfg.Backtest.RiskFreeRate = btRiskFree
		cfg.Backtest.SamplingInterval = btInterval
		cfg.Journal.Type = "none"
	}

	from, to, err := parseRange(btFrom, btTo)
	if err != nil {
		return err
	}

	bars, err := feed.LoadBars(btBarsPath, from, to)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	bus := stream.NewBus()
	var wg sync.WaitGroup

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		sub := bus.Subscribe(0)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := journal.Consume(j, sub); err != nil {
				fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			}
		}()
	}

	if cfg.Dashboard.Enabled {
		hub := dashboard.NewHub()
		defer hub.Close()
		go hub.Stream(bus.Subscribe(0))
		go func() {
			if err := http.ListenAndServe(cfg.Dashboard.Addr, hub); err != nil {
				fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
			}
		}()
		fmt.Printf("Dashboard listening on ws://%s\n", cfg.Dashboard.Addr)
	}

	start, end := from, to
	if start.IsZero() {
		start = bars[0].Time
	}
	if end.IsZero() {
		end = bars[len(bars)-1].Time
	}

	runner := backtest.NewRunner(backtest.Config{
		Strategy:         strat,
		InitialCapital:   cfg.Account.InitialCapital,
		FeePerTrade:      cfg.Backtest.FeePerTrade,
		RiskFreeRate:     cfg.Backtest.RiskFreeRate,
		SamplingInterval: cfg.Backtest.SamplingInterval,
		ProgressInterval: cfg.Backtest.ProgressInterval,
	}, bus)

	fmt.Printf("Replaying %d bars with strategy %s\n\n", len(bars), strat.Name())

	result, err := runner.Run(bars, start, end)
	bus.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	result.Print(os.Stdout)
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, to, fmt.Errorf("bad --from %q: %w", fromStr, err)
		}
	}
	if toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			return from, to, fmt.Errorf("bad --to %q: %w", toStr, err)
		}
	}
	return from, to, nil
}
