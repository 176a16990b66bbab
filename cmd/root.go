package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/intertest/internal/llm"
	"github.com/abhisek/intertest/internal/logging"
	"github.com/abhisek/intertest/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "intertest",
	Short: "Generate interview tests from a job description",
	Long: "intertest builds a structured interview test (MCQs, an optional coding challenge and short answers)\n" +
		"for a job description by prompting an ordered list of LLM providers, falling back on failure.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return loadEnvFile(envFile)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite event log (overrides INTERTEST_DB env var)")
	pf.String("config", "", "Path to YAML provider config (overrides INTERTEST_CONFIG env var)")
	pf.String("providers", "", "Comma-separated provider priority list (e.g. huggingface,gemini)")
	pf.String("env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.String("log-level", "", "Log level: debug, info, warn, error (default warn)")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("log-file", "", "Also write logs to this rotating file")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads a dotenv file. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then INTERTEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveConfig loads provider settings from --config or INTERTEST_CONFIG
// when set, else from the environment alone, then applies --providers.
func resolveConfig(cmd *cobra.Command) (llm.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("INTERTEST_CONFIG")
	}

	var cfg llm.Config
	if path != "" {
		var err error
		if cfg, err = llm.LoadConfig(path); err != nil {
			return llm.Config{}, err
		}
	} else {
		cfg = llm.ConfigFromEnv()
	}

	if list, _ := cmd.Flags().GetString("providers"); list != "" {
		cfg.Providers = llm.ParseProviderList(list)
	}
	if err := cfg.Validate(); err != nil {
		return llm.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the persistent log flags.
func newLogger(cmd *cobra.Command) (*logging.Logger, func() error, error) {
	opts := logging.DefaultOptions()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		opts.Level = lvl
	} else if lvl := os.Getenv("INTERTEST_LOG_LEVEL"); lvl != "" {
		opts.Level = lvl
	}
	opts.Format, _ = cmd.Flags().GetString("log-format")
	opts.File, _ = cmd.Flags().GetString("log-file")
	return logging.New(opts, os.Stderr)
}

// runtime bundles what the generation commands need. Close releases the
// store and the log file.
type runtime struct {
	cfg        llm.Config
	logger     *logging.Logger
	store      *store.Store
	providers  []llm.Provider
	dispatcher *llm.Dispatcher

	closers []func() error
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	rt := &runtime{}

	logger, closeLog, err := newLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	rt.logger = logger
	rt.closers = append(rt.closers, closeLog)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load provider config: %w", err)
	}
	rt.cfg = cfg

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.closers = append(rt.closers, st.Close)

	disp, err := llm.NewDispatcherFromConfig(cfg, st.EventRepo(), logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build providers: %w", err)
	}
	rt.dispatcher = disp
	rt.providers = disp.Providers()

	logger.WithFields(logrus.Fields{
		"providers": cfg.Providers,
		"db":        dbPath,
	}).Debug("runtime ready")
	return rt, nil
}

func (rt *runtime) providerNames() []string {
	names := make([]string, len(rt.providers))
	for i, p := range rt.providers {
		names[i] = p.Name()
	}
	return names
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
	rt.closers = nil
}
