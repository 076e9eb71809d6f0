package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the patch server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ok := c.IsConnected(cmd.Context())
		view.SetConnected(ok)
		if !ok {
			return fmt.Errorf("patch server %s is not reachable", cfg.BaseURL)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the installation size with the server file list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		updated, err := c.IsUpdated(cmd.Context())
		if err != nil {
			return err
		}
		if updated {
			view.SetPatchText("Up to date")
			return nil
		}
		view.SetPatchText("Update required")
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Delete unknown files and download missing or stale ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		report, err := c.UpdateGame(cmd.Context())
		if err != nil {
			return err
		}
		if report == nil {
			view.SetPatchText("Update status unknown, skipped")
			return nil
		}
		return saveReport(report)
	},
}

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Update the installation if needed and start the game",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		report, err := c.Launch(cmd.Context(), true)
		if err != nil {
			return err
		}
		return saveReport(report)
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the launcher version",
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
