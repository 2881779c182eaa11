package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tradebot/bot"
	"tradebot/config"
	"tradebot/journal"
	"tradebot/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading bot",
	Long: `Start the bot against the configured backend and keep positions
updated until interrupted.

With no config file the bot falls back to paper trading defaults.

Example:
  tradebot run -f config.yaml --interval 5s`,
	RunE: runRun,
}

var (
	runConfigPath string
	runInterval   time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 5*time.Second, "position update interval")
}

func runRun(cmd *cobra.Command, args []string) error {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	var cfg *config.Config
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	var j journal.Journal
	var err error
	switch cfg.Journal.Type {
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		j = journal.Nop{}
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	b := bot.New(cfg, j, log)
	defer b.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		return err
	}

	b.Run(ctx, runInterval)
	b.Stop()

	status, err := b.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("final status: %w", err)
	}
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}
