package backup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lupppig/sitectl/internal/compress"
	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/manifest"
)

// Extension is the suffix the platform gives its database dumps.
const Extension = ".backup"

// BackupFile is one candidate for restore, found at invocation time.
type BackupFile struct {
	Name    string
	Dir     string
	Size    int64
	ModTime time.Time
}

func (f BackupFile) Path() string {
	return filepath.Join(f.Dir, f.Name)
}

// DisplayName is the name shown to operators: compression and the .backup
// extension are stripped, so "2024-05-01.backup.gz" shows as "2024-05-01".
func (f BackupFile) DisplayName() string {
	name := compress.TrimSuffix(f.Name)
	if trimmed, ok := strings.CutSuffix(name, Extension); ok {
		return trimmed
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// List returns the restorable files in dir sorted by name. Directories,
// dot-files and manifest sidecars are skipped. A directory that does not
// exist yet holds no backups.
func List(dir string) ([]BackupFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.TypeResource, "failed to read backup directory", "Check backup_dirpath and its permissions.")
	}

	var files []BackupFile
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, manifest.Suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, BackupFile{
			Name:    name,
			Dir:     dir,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Stat resolves an operator-supplied path. Anything that is not a regular
// file is reported as not found.
func Stat(path string) (BackupFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return BackupFile{}, apperrors.Wrap(err, apperrors.TypeResource, "backup file not found: "+path, "Check the --file path.")
	}
	if !info.Mode().IsRegular() {
		return BackupFile{}, apperrors.Wrap(fs.ErrNotExist, apperrors.TypeResource, "backup file not found: "+path+" is not a regular file", "Point --file at a backup file, not a directory.")
	}
	return BackupFile{
		Name:    filepath.Base(path),
		Dir:     filepath.Dir(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
