package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/quatton/filesmanager/pkg/config"
	"github.com/quatton/filesmanager/pkg/fmlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type contextKey string

const viperContextKey contextKey = "fmviper"

const EnvPrefix = "FM"

var rootCmd = &cobra.Command{
	Use:   "filesmanager",
	Short: "Files manager store status server and tools",
	Long: `filesmanager serves the liveness and statistics of the files manager's
document store (MongoDB or PostgreSQL) and key-value store (Redis). Store
targets come from the environment (DB_HOST, DB_PORT, DB_DATABASE, REDIS_ADDR,
...); flags below can also be set as FM_<FLAG>.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		ctx := context.WithValue(cmd.Context(), viperContextKey, v)
		cmd.SetContext(ctx)
		return nil
	},
}

// getViper retrieves the per-command viper instance from the command context
func getViper(cmd *cobra.Command) (*viper.Viper, error) {
	v, ok := cmd.Context().Value(viperContextKey).(*viper.Viper)
	if !ok {
		return nil, errors.New("no config in context")
	}
	return v, nil
}

// newLogger builds the process logger. --log-level wins over LOG_LEVEL.
func newLogger(cmd *cobra.Command, cfg *config.EnvConfig) *fmlog.Logger {
	level := cfg.LogLevel
	if v, err := getViper(cmd); err == nil && v.GetString("log-level") != "" {
		level = v.GetString("log-level")
	}
	return fmlog.NewLogger(fmlog.ParseLevel(level), os.Stdout)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
}
