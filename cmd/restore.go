package cmd

import (
	"io"
	"os"

	"github.com/lupppig/sitectl/internal/backup"
	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/notify"
	"github.com/lupppig/sitectl/internal/settings"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	restoreFile     string
	restoreDatabase string
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the platform database from a backup",
	Long: `Restore the platform database from a backup file.

Without --file, the backups in the configured backup directory are listed
with a number each and you are asked which one to restore.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := stateFrom(cmd.Context())
		l := logger.FromContext(cmd.Context())

		enc, err := st.Settings.Encoding()
		if err != nil {
			return apperrors.Wrap(err, apperrors.TypeConfig, "invalid default_encoding", "Use a WHATWG encoding label such as utf-8.")
		}
		out := backup.ConsoleWriter(cmd.OutOrStdout(), enc)
		defer out.Close()

		mgr := backup.NewRestoreManager(backup.RestoreOptions{
			Settings:       st.Settings,
			Logger:         l,
			Notifier:       notify.BuildNotifier(st.Config.Notifications),
			Progress:       isTerminal(cmd.ErrOrStderr()),
			ProgressOutput: cmd.ErrOrStderr(),
		})

		sel := &backup.Selector{
			Dir:      st.Settings.BackupDirPath,
			Database: restoreDatabase,
			Restorer: mgr,
			In:       cmd.InOrStdin(),
			Out:      out,
			Logger:   l,
		}

		outcome, err := sel.Run(cmd.Context(), restoreFile)
		if err != nil {
			return err
		}
		l.Debug("Restore command finished", "outcome", outcome.String())
		return nil
	},
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	restoreCmd.Flags().StringVar(&restoreFile, "file", "", "backup file to restore, skipping the interactive listing")
	restoreCmd.Flags().StringVar(&restoreDatabase, "database", settings.DefaultDatabase, "database alias to restore into")
	rootCmd.AddCommand(restoreCmd)
}
