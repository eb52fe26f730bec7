package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsconsole/bluegreen-manager/pkg/orchestrator"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List app folders in the configuration repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		documentStore, err := newDocumentStore()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ref := cfg.BaseRef
		if ref == "" {
			if ref, err = documentStore.DefaultRef(ctx); err != nil {
				return err
			}
		}

		apps, err := orchestrator.ListApps(ctx, documentStore, cfg.AppsBasePath, ref)
		if err != nil {
			return err
		}

		for _, app := range apps {
			fmt.Println(app)
		}
		return nil
	},
}

var valuesCmd = &cobra.Command{
	Use:   "values [app]",
	Short: "List values files for an app",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentStore, err := newDocumentStore()
		if err != nil {
			return err
		}

		app := cfg.App
		if len(args) == 1 {
			app = args[0]
		}

		ctx := cmd.Context()
		ref := cfg.BaseRef
		if ref == "" {
			if ref, err = documentStore.DefaultRef(ctx); err != nil {
				return err
			}
		}

		values, err := orchestrator.ListValuesFiles(ctx, documentStore, cfg.AppsBasePath, app, ref)
		if err != nil {
			return err
		}

		for _, name := range values {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appsCmd, valuesCmd)
}
