package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumispeak/medialed/internal/logging"
	"github.com/lumispeak/medialed/internal/updater"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool
	var prerelease bool
	var repository string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update medialed to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Initialize(logging.Config{
				Level:  "warn",
				Format: "text",
			})

			u, err := updater.New(updater.Options{
				Repository: repository,
				Prerelease: prerelease,
			})
			if err != nil {
				return err
			}

			ctx := context.Background()
			info, err := u.Check(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Current version: %s\n", info.CurrentVersion)
			fmt.Fprintf(os.Stdout, "Latest version:  %s\n", info.LatestVersion)

			if !info.UpdateAvailable {
				fmt.Fprintln(os.Stdout, "Already up to date")
				return nil
			}

			if checkOnly {
				fmt.Fprintf(os.Stdout, "Update available: %s\n", info.ReleaseURL)
				return nil
			}

			fmt.Fprintf(os.Stdout, "Updating to %s...\n", info.LatestVersion)
			if err := u.Apply(ctx); err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "Update applied, restart the service to use the new version")
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, do not apply")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().StringVar(&repository, "repository", "lumispeak/medialed", "GitHub repository slug")

	return cmd
}
