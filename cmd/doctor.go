package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"time"

	"github.com/lupppig/sitectl/internal/backup"
	database "github.com/lupppig/sitectl/internal/db"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that restores can run on this machine",
	Long: `Verify that the native client tools used by restore are on PATH, that the
backup directory is readable and that every configured database answers.`,
	Run: func(cmd *cobra.Command, args []string) {
		st := stateFrom(cmd.Context())
		l := logger.FromContext(cmd.Context())
		out := cmd.OutOrStdout()
		l.Info("sitectl doctor - System Environment Check", "os", runtime.GOOS, "arch", runtime.GOARCH)

		groups := []struct {
			name     string
			binaries []string
		}{
			{"PostgreSQL", []string{"psql"}},
			{"MySQL", []string{"mysql"}},
		}

		for _, group := range groups {
			fmt.Fprintf(out, "[%s]\n", group.name)
			for _, bin := range group.binaries {
				path, err := exec.LookPath(bin)
				if err != nil {
					fmt.Fprintf(out, "  [ ] %-12s: NOT FOUND\n", bin)
				} else {
					fmt.Fprintf(out, "  [x] %-12s: %s\n", bin, path)
				}
			}
			fmt.Fprintln(out)
		}

		dir := st.Settings.BackupDirPath
		fmt.Fprintln(out, "[Backup Directory]")
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(out, "  [ ] %s: does not exist yet, nothing to restore\n", dir)
		} else if files, err := backup.List(dir); err != nil {
			fmt.Fprintf(out, "  [ ] %s: %v\n", dir, err)
		} else {
			fmt.Fprintf(out, "  [x] %s: %d backup(s)\n", dir, len(files))
		}

		fmt.Fprintln(out, "\n[Database Checks]")
		for _, alias := range slices.Sorted(maps.Keys(st.Settings.Databases)) {
			conn := database.FromSettings(st.Settings.Databases[alias])
			adapter, err := database.GetAdapter(conn.DBType)
			if err != nil {
				fmt.Fprintf(out, "  [ ] %-18s: %v\n", alias, err)
				continue
			}
			adapter.SetLogger(l)

			start := time.Now()
			if err := adapter.TestConnection(cmd.Context(), conn, &database.LocalRunner{}); err != nil {
				fmt.Fprintf(out, "  [ ] %-18s: %s FAILED (%v)\n", alias, adapter.Name(), err)
				continue
			}
			fmt.Fprintf(out, "  [x] %-18s: %s OK (%s)\n", alias, adapter.Name(), time.Since(start).Truncate(time.Millisecond))
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
