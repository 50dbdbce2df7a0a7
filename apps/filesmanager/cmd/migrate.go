package cmd

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/filesmanager/pkg/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users and files tables for DB_DRIVER=postgres",
	RunE:  migrateDB,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("rollback", false, "Roll back the last migration group instead")
}

func migrateDB(cmd *cobra.Command, args []string) error {
	v, err := getViper(cmd)
	if err != nil {
		return err
	}

	var cfg db.Config
	if err := envconfig.Process("DB", &cfg); err != nil {
		return fmt.Errorf("failed to process env vars: %w", err)
	}

	database, err := db.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	step := db.Migrate
	if v.GetBool("rollback") {
		step = db.Rollback
	}

	msg, err := step(cmd.Context(), database)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
