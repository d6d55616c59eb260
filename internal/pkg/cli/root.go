package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/config"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/metrics"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const AppName = "mongo-zbx"

var Version = "devel"

// flagKeys binds a command flag to a configuration key.
type flagKeys map[string]string

var rootFlagKeys = flagKeys{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"metrics-file": "metrics_file",
}

// NewRootCmd builds the command tree around deps.
func NewRootCmd(deps *Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           AppName,
		Short:         "MongoDB probes and host provisioning for Zabbix",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", log.InfoLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")
	root.PersistentFlags().String("metrics-file", "", "write the self-metrics to this file on exit")

	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{Command: c.CommandPath(), Err: err}
	})

	root.AddCommand(newProvisionCmd(deps))
	root.AddCommand(newStandaloneCmd(deps))
	root.AddCommand(newReplSetCmd(deps))
	root.AddCommand(newCheckCmd(deps))
	return root
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, deps *Deps) int {
	root := NewRootCmd(deps)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		err = &UsageError{Command: AppName, Err: err}
	}
	if err != nil {
		fmt.Fprintln(deps.Err, "Error:", err)
		var usage *UsageError
		if errors.As(err, &usage) {
			fmt.Fprintln(deps.Err, usage.Hint())
		}
	}
	return ExitCode(err)
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf(cmd.CommandPath(), "unexpected argument %q", args[0])
	}
	return nil
}

// loadConfig layers defaults, the configuration file, the environment and
// the flags of cmd, then sets the logger up.
func loadConfig(cmd *cobra.Command, deps *Deps, keys flagKeys) (*config.AppConfig, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd.Flags(), rootFlagKeys); err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd.Flags(), keys); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, deps)
	cfg.LogConfig()
	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys flagKeys) error {
	for name, key := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %s", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}

func setupLogging(cfg *config.AppConfig, deps *Deps) {
	level := log.FromString(cfg.Logging.Level)
	log.SetLogLevel(level)
	log.SetOutput(deps.Err)
	if cfg.Logging.Format == "json" {
		log.SetLogFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetLogFormatter(&logrus.TextFormatter{
			FullTimestamp: false,
			DisableColors: false,
		})
	}
	log.Debug(fmt.Sprintf("log level: %d (%s)", level, cfg.Logging.Level))
}

// writeMetrics dumps the self-metrics when a metrics file is configured.
func writeMetrics(cfg *config.AppConfig) {
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.ErrorWithFields("could not write the metrics file", log.Fields{"file": cfg.MetricsFile, "error": err})
	}
}
