package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/settings"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsFormat string

type settingsView struct {
	Packages []string          `json:"packages" yaml:"packages"`
	Settings settings.Settings `json:"settings" yaml:"settings"`
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Print the composed platform settings",
	Long: `Print the settings the platform runs with: defaults, local overrides
and every selected configuration package applied in order. Passwords are
never printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := stateFrom(cmd.Context())
		view := settingsView{Packages: st.Packages, Settings: st.Settings}
		if view.Packages == nil {
			view.Packages = []string{}
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(settingsFormat) {
		case "yaml", "yml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("failed to encode settings: %w", err)
			}
			return enc.Close()
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		default:
			return apperrors.New(apperrors.TypeInput, fmt.Sprintf("unknown format %q", settingsFormat), "Use --format yaml or --format json.")
		}
	},
}

func init() {
	settingsCmd.Flags().StringVar(&settingsFormat, "format", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(settingsCmd)
}
