package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lupppig/sitectl/internal/backup"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List the backups available for restore",
	Long: `List the files in the configured backup directory, numbered the way
the restore command numbers them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := stateFrom(cmd.Context())
		l := logger.FromContext(cmd.Context())
		dir := st.Settings.BackupDirPath

		l.Debug("Scanning backup directory", "dir", dir)
		files, err := backup.List(dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintf(out, "No backups found in %s\n", dir)
			return nil
		}

		fmt.Fprintf(out, "%-4s %-30s %-10s %-20s %s\n", "#", "NAME", "SIZE", "MODIFIED", "FILE")
		fmt.Fprintln(out, strings.Repeat("-", 90))
		for i, f := range files {
			fmt.Fprintf(out, "%-4d %-30s %-10s %-20s %s\n",
				i,
				f.DisplayName(),
				humanize.Bytes(uint64(f.Size)),
				f.ModTime.Format("2006-01-02 15:04:05"),
				f.Name,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}
