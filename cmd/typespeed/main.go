// Package main provides the CLI entrypoint for typespeed.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typespeed/internal/bridge"
	"github.com/verte-zerg/typespeed/internal/config"
	"github.com/verte-zerg/typespeed/internal/history"
	"github.com/verte-zerg/typespeed/internal/logging"
	"github.com/verte-zerg/typespeed/internal/model"
	"github.com/verte-zerg/typespeed/internal/stats"
	"github.com/verte-zerg/typespeed/internal/store"
	"github.com/verte-zerg/typespeed/internal/trial"
	"github.com/verte-zerg/typespeed/internal/tui"
	"github.com/verte-zerg/typespeed/internal/wordbank"
)

const (
	defaultAddr          = ":8080"
	defaultHistoryTop    = 5
	defaultHistoryWindow = 3
)

var (
	practiceWords    int
	practiceDuration int
	practiceWordList string
	practiceSeed     int64
	logLevel         string

	serveAddr string

	historyLast   int
	historyWindow int
	historyTop    int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typespeed",
		Short:         "Timed typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&practiceWords, "words", trial.DefaultWords, "words per test")
	cmd.Flags().IntVar(&practiceDuration, "duration", trial.DefaultDuration, "time limit in seconds")
	cmd.Flags().StringVar(&practiceWordList, "wordlist", "", "path to a word list (one word per line)")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for word sampling (0 picks one)")
}

// loadSettings resolves practice settings: defaults, then the config file,
// then environment, then explicit flags.
func loadSettings(cmd *cobra.Command) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.Load(config.DefaultConfigPath(), config.DefaultDotenvPath())
	if err != nil {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Practice.Duration)
	applyStringConfig(cmd, "wordlist", &practiceWordList, fileCfg.Practice.WordList)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	cfg := model.Config{
		Words:        practiceWords,
		Duration:     practiceDuration,
		WordListPath: practiceWordList,
		Seed:         practiceSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

func newBank(cfg model.Config) (*wordbank.Bank, error) {
	var words []string
	if cfg.WordListPath != "" {
		loaded, err := wordbank.LoadWords(cfg.WordListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
		}
		words = loaded
	}
	if cfg.Seed != 0 {
		return wordbank.NewSeeded(words, cfg.Seed), nil
	}
	return wordbank.New(words), nil
}

func openStore(logger *zap.SugaredLogger) (*store.Store, func(), error) {
	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logger.Errorw("failed to close db", "error", cerr)
		}
	}
	return st, closeFn, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	// The TUI owns the terminal, so logs go to a file.
	logger, syncLog, err := logging.New(logging.Options{Level: logLevel, Path: config.DefaultLogPath()})
	if err != nil {
		return err
	}
	defer syncLog()

	bank, err := newBank(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()

	updates := make(chan trial.Snapshot, 1)
	ctrl := trial.New(bank, history.New(st, logger),
		trial.WithWords(cfg.Words),
		trial.WithDuration(cfg.Duration),
		trial.WithArchive(st),
		trial.WithLogger(logger),
		trial.WithNotify(latestSnapshot(updates)),
	)
	defer ctrl.Close()

	logger.Infow("starting practice", "words", cfg.Words, "duration", cfg.Duration, "wordlist", cfg.WordListPath)
	program := tea.NewProgram(tui.NewModel(ctrl, updates, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// latestSnapshot returns a notify func that keeps only the newest snapshot
// pending in ch, which must have a buffer of one.
func latestSnapshot(ch chan trial.Snapshot) func(trial.Snapshot) {
	var mu sync.Mutex
	return func(s trial.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case pending := <-ch:
			if pending.Seq > s.Seq {
				s = pending
			}
		default:
		}
		ch <- s
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve typing trials over websockets",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	addPracticeFlags(cmd)
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	if strings.TrimSpace(serveAddr) == "" {
		return fmt.Errorf("--addr must not be empty")
	}

	logger, syncLog, err := logging.New(logging.Options{Level: logLevel})
	if err != nil {
		return err
	}
	defer syncLog()

	bank, err := newBank(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hist := history.New(st, logger)
	factory := func(notify func(trial.Snapshot)) bridge.Session {
		return trial.New(bank, hist,
			trial.WithWords(cfg.Words),
			trial.WithDuration(cfg.Duration),
			trial.WithArchive(st),
			trial.WithLogger(logger),
			trial.WithNotify(notify),
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := bridge.NewServer(factory, hist, logger).ListenAndServe(ctx, serveAddr); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit the summary to the last N trials (0 = all)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the chart")
	cmd.Flags().IntVar(&historyTop, "top", defaultHistoryTop, "number of most mistyped words to show")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if historyTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	fileCfg, err := config.Load(config.DefaultConfigPath(), config.DefaultDotenvPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	logger, syncLog, err := logging.New(logging.Options{Level: logLevel})
	if err != nil {
		return err
	}
	defer syncLog()

	st, closeStore, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return writeHistoryReport(cmd.Context(), cmd.OutOrStdout(), st, history.New(st, logger), reportOptions{
		Last:   historyLast,
		Window: historyWindow,
		Top:    historyTop,
		Width:  stats.SeriesWidthFor(0),
	})
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typespeed configuration
# Uncomment a value to enable it. TYPESPEED_* environment variables override
# config values; CLI flags override both.

[practice]
# words = %d              # Words per test
# duration = %d           # Time limit in seconds
# wordlist = ""           # Path to a word list, one word per line
# seed = 0                # Random seed for word sampling (0 picks one)

[serve]
# addr = %q          # Listen address of the websocket bridge

[log]
# level = "info"          # debug, info, warn or error
`,
		trial.DefaultWords,
		trial.DefaultDuration,
		defaultAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if _, err := logging.ParseLevel(logLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}
