package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records build information injected by main
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	PersistentPreRunE: skipInit,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cardctl %s (built %s, %s/%s)\n", version, buildTime, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
