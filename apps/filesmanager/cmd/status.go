package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quatton/filesmanager/pkg/config"
	"github.com/quatton/filesmanager/pkg/fmapi/services"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check both stores once and print liveness and counts",
	Long: `Connects to the document store and the key-value store the same way the
server does, waits up to --wait for the first outcome, and prints what the
/status and /stats endpoints would report. Exits non-zero if either store is
down.`,
	RunE: status,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Duration("wait", 5*time.Second, "How long to wait for the stores to connect")
}

func status(cmd *cobra.Command, args []string) error {
	cfg, err := config.ValidateEnv()
	if err != nil {
		return err
	}

	v, err := getViper(cmd)
	if err != nil {
		return err
	}

	svcs := services.NewServices(cfg, newLogger(cmd, cfg))
	defer svcs.Close(context.Background())

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("wait"))
	defer cancel()

	// Wait errors are reflected in IsAlive below.
	_ = svcs.DB.Wait(ctx)
	_ = svcs.KV.Wait(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "redis: %s\n", aliveLabel(svcs.KV.IsAlive()))
	fmt.Fprintf(out, "db:    %s\n", aliveLabel(svcs.DB.IsAlive()))
	fmt.Fprintf(out, "users: %d\n", svcs.DB.NbUsers(cmd.Context()))
	fmt.Fprintf(out, "files: %d\n", svcs.DB.NbFiles(cmd.Context()))

	if !svcs.KV.IsAlive() || !svcs.DB.IsAlive() {
		return errors.New("one or more stores are down")
	}
	return nil
}

func aliveLabel(alive bool) string {
	if alive {
		return "✓ alive"
	}
	return "✗ down"
}
