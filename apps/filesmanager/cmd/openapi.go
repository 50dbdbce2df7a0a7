package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quatton/filesmanager/pkg/fmapi"
	"github.com/quatton/filesmanager/pkg/fmapi/routes"
	"github.com/spf13/cobra"
)

// openapiCmd represents the openapi command
var openapiCmd = &cobra.Command{
	Use:     "openapi",
	Aliases: []string{"spec"},
	Short:   "Generate OpenAPI specification",
	Long:    `Outputs the OpenAPI specification of the status API without connecting to any store.`,
	RunE:    generateOpenAPI,
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringP("output", "o", "", "Write output to file (default stdout)")
	openapiCmd.Flags().Bool("downgrade", true, "Downgrade OpenAPI to 3.0 when generating the spec")
}

func generateOpenAPI(cmd *cobra.Command, args []string) error {
	v, err := getViper(cmd)
	if err != nil {
		return err
	}

	api := fmapi.NewApi()
	routes.RegisterAPI(api.Api, nil)

	var spec []byte
	if v.GetBool("downgrade") {
		spec, err = api.Api.OpenAPI().Downgrade()
	} else {
		spec, err = json.Marshal(api.Api.OpenAPI())
	}
	if err != nil {
		return fmt.Errorf("failed to generate OpenAPI spec: %w", err)
	}

	output := v.GetString("output")
	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(spec))
		return nil
	}

	if err := os.WriteFile(output, spec, 0644); err != nil {
		return fmt.Errorf("failed to write OpenAPI spec to %s: %w", output, err)
	}
	return nil
}
