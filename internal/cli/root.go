// Package cli implements the fanout command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *slog.Logger
}

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:   "fanout",
		Short: "fanout - run an operation over a collection with two levels of parallelism",
		Long: `fanout applies a named operation to every element of a collection.

The collection is split round-robin across isolated workers, and every worker
runs its share with a bounded number of concurrent calls. Elements come from
arguments, a file (text, JSON, YAML or TOML) or a Redis list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.fanout.yaml)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml, plain)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, logfmt, json)")
	flags.String("redis-addr", "localhost:6379", "redis address for --redis-key and --redis-out-key")
	flags.String("redis-password", "", "redis password")
	flags.Int("redis-db", 0, "redis database number")

	bind(a.v, flags, map[string]string{
		"output":         "output",
		"no-color":       "no-color",
		"log-level":      "log.level",
		"log-format":     "log.format",
		"redis-addr":     "redis.addr",
		"redis-password": "redis.password",
		"redis-db":       "redis.db",
	})

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newOpsCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd
}

// initConfig reads the config file and environment and sets up logging
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".fanout")
	}

	a.v.SetEnvPrefix("FANOUT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		// A missing default config file is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || a.cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	a.logger = newLogger(cmd.ErrOrStderr(), a.v.GetString("log.level"), a.v.GetString("log.format"))
	slog.SetDefault(a.logger)

	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration", "file", used)
	}
	return nil
}
