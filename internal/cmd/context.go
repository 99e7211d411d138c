package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/harrison/difftest/internal/config"
	"github.com/harrison/difftest/internal/display"
	"github.com/harrison/difftest/internal/logger"
	"github.com/harrison/difftest/internal/testlog"
	"github.com/spf13/cobra"
)

// runContext is what every command needs after startup: merged config, a
// logger, and the scanned log.
type runContext struct {
	cfg      *config.Config
	log      logger.Logger
	useColor bool
	lines    []string
	failures []testlog.Failure
}

func newRunContext(cmd *cobra.Command) (*runContext, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel,
		display.ColorEnabled(cfg.Color, asFile(cmd.ErrOrStderr())))

	lines, err := testlog.ReadLines(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	log.LogDebug(fmt.Sprintf("read %d lines from %s", len(lines), cfg.LogFile))

	failures := testlog.FindFailures(lines)
	log.LogInfo(fmt.Sprintf("found %d failing tests in %s", len(failures), cfg.LogFile))
	for _, f := range failures {
		log.LogTrace(fmt.Sprintf("failure %d: %s at line %d", f.Rank, f.Name, f.Line+1))
	}

	return &runContext{
		cfg:      cfg,
		log:      log,
		useColor: display.ColorEnabled(cfg.Color, asFile(cmd.OutOrStdout())),
		lines:    lines,
		failures: failures,
	}, nil
}

// loadConfig reads the config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.MergeWithFlags(
		changedString(cmd, "log"),
		changedString(cmd, "log-level"),
		changedString(cmd, "color"),
		changedString(cmd, "diff"),
		changedString(cmd, "format"),
	)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// changedString returns the flag value only if the user set it. Flags not
// defined on cmd are treated as unset.
func changedString(cmd *cobra.Command, name string) *string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}
	v := f.Value.String()
	return &v
}

// asFile returns w when it is a real file, for terminal detection.
func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}
