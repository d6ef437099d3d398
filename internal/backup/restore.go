package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lupppig/sitectl/internal/compress"
	database "github.com/lupppig/sitectl/internal/db"
	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/manifest"
	"github.com/lupppig/sitectl/internal/notify"
	"github.com/lupppig/sitectl/internal/settings"
)

type RestoreOptions struct {
	Settings settings.Settings
	Logger   *logger.Logger
	Notifier notify.Notifier
	Runner   database.Runner

	// Progress draws a bar on ProgressOutput while the backup streams in.
	Progress       bool
	ProgressOutput io.Writer
}

// RestoreManager is the Restorer used in production: it verifies the
// backup, decompresses it and streams it into the engine adapter.
type RestoreManager struct {
	Options RestoreOptions
}

func NewRestoreManager(opts RestoreOptions) *RestoreManager {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Runner == nil {
		opts.Runner = &database.LocalRunner{}
	}
	if opts.ProgressOutput == nil {
		opts.ProgressOutput = os.Stderr
	}
	return &RestoreManager{Options: opts}
}

func (m *RestoreManager) Restore(ctx context.Context, path, alias string) (err error) {
	runID := uuid.NewString()
	l := m.Options.Logger.With("run_id", runID)
	start := time.Now()
	name := filepath.Base(path)

	var engine string
	var size int64
	defer func() {
		if m.Options.Notifier == nil {
			return
		}
		status := notify.StatusSuccess
		if err != nil {
			status = notify.StatusError
		}
		nerr := m.Options.Notifier.Notify(ctx, notify.Stats{
			RunID:     runID,
			Status:    status,
			Operation: "Restore",
			Engine:    engine,
			Database:  alias,
			FileName:  name,
			Size:      size,
			Duration:  time.Since(start),
			Error:     err,
		})
		if nerr != nil {
			l.Warn("Notification failed", "error", nerr)
		}
	}()

	dbCfg, ok := m.Options.Settings.Database(alias)
	if !ok {
		return apperrors.New(apperrors.TypeConfig, fmt.Sprintf("no database configured under %q", alias), "Add it under settings.databases or pick another --database.")
	}
	conn := database.FromSettings(dbCfg)
	engine = conn.DBType

	adapter, err := database.GetAdapter(conn.DBType)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeConfig, "cannot restore database "+alias, "Supported engines: sqlite, postgres, mysql.")
	}
	adapter.SetLogger(l)

	info, err := os.Stat(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "backup file not found: "+path, "")
	}
	size = info.Size()

	if err := adapter.TestConnection(ctx, conn, m.Options.Runner); err != nil {
		return err
	}

	if err := m.verifyManifest(l, path, conn.DBType); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to open backup", "")
	}
	defer f.Close()

	var src io.Reader = f
	var finish func(ok bool)
	if m.Options.Progress {
		p := NewProgressContainer(m.Options.ProgressOutput)
		bar := AddRestoreBar(p, name, info.Size())
		src = NewProgressReader(f, bar)
		finish = func(ok bool) {
			if ok {
				bar.SetTotal(-1, true)
			} else {
				bar.Abort(false)
			}
			p.Wait()
		}
	}

	algo := compress.DetectAlgorithm(name)
	dec, err := compress.NewReader(src, algo)
	if err != nil {
		if finish != nil {
			finish(false)
		}
		return apperrors.Wrap(err, apperrors.TypeIntegrity, fmt.Sprintf("failed to open %s stream", algo), "The file name suggests compression the content does not have.")
	}
	defer dec.Close()

	l.Info("Restore started", "engine", conn.DBType, "database", alias, "file", name, "compression", algo)

	err = adapter.RunRestore(ctx, conn, m.Options.Runner, dec)
	if finish != nil {
		finish(err == nil)
	}
	if err != nil {
		l.Error("Restore failed", "error", err)
		return fmt.Errorf("database restore failed: %w", err)
	}

	l.Info("Restore finished", "database", alias, "duration", time.Since(start).String())
	return nil
}

// verifyManifest checks the backup against its sidecar, when there is one.
func (m *RestoreManager) verifyManifest(l *logger.Logger, path, engine string) error {
	data, err := os.ReadFile(path + manifest.Suffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Debug("No manifest for backup, skipping integrity check", "file", path)
			return nil
		}
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to read manifest", "")
	}

	man, err := manifest.Deserialize(data)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeIntegrity, "manifest is not valid JSON", "Delete or regenerate "+path+manifest.Suffix+".")
	}

	if man.Engine != "" && database.NormalizeEngine(man.Engine) != engine {
		return apperrors.New(apperrors.TypeConfig,
			fmt.Sprintf("backup was taken from %s but the target database is %s", man.Engine, engine),
			"Restore into a database of the same engine.")
	}

	if man.Checksum == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to open backup", "")
	}
	defer f.Close()

	actual, err := manifest.CalculateChecksum(f)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to checksum backup", "")
	}
	if actual != man.Checksum {
		return fmt.Errorf("checksum mismatch for %s (expected %s, got %s): %w", filepath.Base(path), man.Checksum, actual, apperrors.ErrIntegrityMismatch)
	}

	l.Info("Integrity verification passed", "checksum", actual)
	return nil
}
