package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const releaseRepository = "s0up4200/cardctl"

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update cardctl to the latest release",
	Long: `Check GitHub for a newer cardctl release and replace the running binary.
Use this when the platform reports the client version as deprecated.`,
	PersistentPreRunE: skipInit,
	RunE:              runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build (%s)", version)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for this platform")
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("cardctl %s is up to date\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("Updated cardctl %s -> %s\n", current, latest.Version())
	return nil
}
