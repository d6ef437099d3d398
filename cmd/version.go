package cmd

import (
	"runtime"

	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/settings"
	"github.com/spf13/cobra"
)

var (
	Commit    = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sitectl version",
	Run: func(cmd *cobra.Command, args []string) {
		l := logger.FromContext(cmd.Context())
		l.Info("sitectl",
			"version", settings.Version,
			"commit", Commit,
			"built_at", BuildDate,
			"go_version", runtime.Version(),
			"os", runtime.GOOS,
			"arch", runtime.GOARCH,
		)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
