package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/settings"
)

// Restorer loads a backup file into the database configured under alias.
type Restorer interface {
	Restore(ctx context.Context, path, alias string) error
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeRestored
	OutcomeNoBackups
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRestored:
		return "restored"
	case OutcomeNoBackups:
		return "no-backups"
	default:
		return "none"
	}
}

// Selector picks the backup to restore, either from an explicit path or
// by asking the operator, and hands it to the Restorer.
type Selector struct {
	Dir      string
	Database string
	Restorer Restorer
	In       io.Reader
	Out      io.Writer
	Logger   *logger.Logger
}

func (s *Selector) Run(ctx context.Context, explicitPath string) (Outcome, error) {
	alias := s.Database
	if alias == "" {
		alias = settings.DefaultDatabase
	}
	l := s.Logger
	if l == nil {
		l = logger.Discard()
	}

	if explicitPath != "" {
		f, err := Stat(explicitPath)
		if err != nil {
			return OutcomeNone, err
		}
		if err := s.Restorer.Restore(ctx, f.Path(), alias); err != nil {
			return OutcomeNone, err
		}
		return OutcomeRestored, nil
	}

	files, err := List(s.Dir)
	if err != nil {
		return OutcomeNone, err
	}
	l.Debug("Scanned backup directory", "dir", s.Dir, "count", len(files))

	if len(files) == 0 {
		if err := s.println("No files available to restore."); err != nil {
			return OutcomeNone, err
		}
		return OutcomeNoBackups, nil
	}

	for i, f := range files {
		if err := s.println(fmt.Sprintf("%d %s", i, f.DisplayName())); err != nil {
			return OutcomeNone, err
		}
	}
	if err := s.println("Please enter a file-number to restore:"); err != nil {
		return OutcomeNone, err
	}

	idx, err := ReadSelection(s.In, len(files))
	if err != nil {
		if errors.Is(err, ErrSelectionOutOfRange) {
			_ = s.println(ErrSelectionOutOfRange.Message)
		}
		return OutcomeNone, err
	}

	chosen := files[idx]
	l.Info("Backup selected", "index", idx, "file", chosen.Name)
	if err := s.Restorer.Restore(ctx, chosen.Path(), alias); err != nil {
		return OutcomeNone, err
	}
	return OutcomeRestored, nil
}

// println writes one line of operator output. A listing that cannot be
// written in full must not be followed by a prompt.
func (s *Selector) println(line string) error {
	if _, err := fmt.Fprintln(s.Out, line); err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to write to console", "Check default_encoding and the terminal.")
	}
	return nil
}
