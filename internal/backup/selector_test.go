package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

type restoreCall struct {
	path  string
	alias string
}

type fakeRestorer struct {
	calls []restoreCall
	err   error
}

func (f *fakeRestorer) Restore(ctx context.Context, path, alias string) error {
	f.calls = append(f.calls, restoreCall{path: path, alias: alias})
	return f.err
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("data"), 0644))
	}
}

func newSelector(dir, input string, r *fakeRestorer) (*Selector, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Selector{
		Dir:      dir,
		Restorer: r,
		In:       strings.NewReader(input),
		Out:      out,
	}, out
}

func TestSelector_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "chosen.backup")
	r := &fakeRestorer{}
	s, out := newSelector(t.TempDir(), "", r)

	outcome, err := s.Run(context.Background(), filepath.Join(dir, "chosen.backup"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeRestored, outcome)
	require.Len(t, r.calls, 1)
	assert.Equal(t, filepath.Join(dir, "chosen.backup"), r.calls[0].path)
	assert.Equal(t, "default", r.calls[0].alias)
	assert.Empty(t, out.String(), "no listing when a file is given")
}

func TestSelector_ExplicitPathMissing(t *testing.T) {
	r := &fakeRestorer{}
	s, _ := newSelector(t.TempDir(), "", r)

	_, err := s.Run(context.Background(), filepath.Join(t.TempDir(), "gone.backup"))
	require.Error(t, err)

	assert.True(t, apperrors.IsType(err, apperrors.TypeResource))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "backup file not found")
	assert.Empty(t, r.calls)
}

func TestSelector_ExplicitPathIsDirectory(t *testing.T) {
	r := &fakeRestorer{}
	s, _ := newSelector(t.TempDir(), "", r)

	_, err := s.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeResource))
	assert.Empty(t, r.calls)
}

func TestSelector_EmptyDirectory(t *testing.T) {
	r := &fakeRestorer{}
	s, out := newSelector(t.TempDir(), "0\n", r)

	outcome, err := s.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoBackups, outcome)
	assert.Equal(t, "No files available to restore.\n", out.String())
	assert.Empty(t, r.calls)
}

func TestSelector_MissingDirectoryCountsAsEmpty(t *testing.T) {
	r := &fakeRestorer{}
	s, out := newSelector(filepath.Join(t.TempDir(), "never-created"), "", r)

	outcome, err := s.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoBackups, outcome)
	assert.Contains(t, out.String(), "No files available")
}

func TestSelector_ValidSelection(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.backup", "a.backup", "b.backup.gz")

	for idx, want := range []string{"a.backup", "b.backup.gz", "c.backup"} {
		r := &fakeRestorer{}
		s, out := newSelector(dir, string(rune('0'+idx))+"\n", r)
		s.Database = "secondary"

		outcome, err := s.Run(context.Background(), "")
		require.NoError(t, err)

		assert.Equal(t, OutcomeRestored, outcome)
		require.Len(t, r.calls, 1)
		assert.Equal(t, filepath.Join(dir, want), r.calls[0].path)
		assert.Equal(t, "secondary", r.calls[0].alias)
		assert.Equal(t, "0 a\n1 b\n2 c\nPlease enter a file-number to restore:\n", out.String())
	}
}

func TestSelector_OutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.backup", "b.backup")

	for _, input := range []string{"2\n", "-1\n", "99"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			r := &fakeRestorer{}
			s, out := newSelector(dir, input, r)

			outcome, err := s.Run(context.Background(), "")
			require.Error(t, err)

			assert.Equal(t, OutcomeNone, outcome)
			assert.True(t, strings.HasSuffix(out.String(), "restore:\nNumber option out of bounds.\n"), out.String())
			assert.ErrorIs(t, err, ErrSelectionOutOfRange)
			assert.Contains(t, err.Error(), "out of bounds")
			assert.Empty(t, r.calls)
		})
	}
}

func TestSelector_NotANumber(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.backup")
	r := &fakeRestorer{}
	s, _ := newSelector(dir, "first\n", r)

	_, err := s.Run(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeInput))
	assert.Empty(t, r.calls)
}

func TestSelector_RestoreErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.backup")
	r := &fakeRestorer{err: errors.New("engine exploded")}
	s, _ := newSelector(dir, "0\n", r)

	outcome, err := s.Run(context.Background(), "")
	assert.EqualError(t, err, "engine exploded")
	assert.Equal(t, OutcomeNone, outcome)
	assert.Len(t, r.calls, 1)
}

func TestSelector_ListingInLegacyEncoding(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.backup", "z.backup", "日本.backup")
	r := &fakeRestorer{}
	s, out := newSelector(dir, "2\n", r)
	s.Out = ConsoleWriter(out, charmap.Windows1252)

	outcome, err := s.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRestored, outcome)

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 5, out.String())
	assert.Equal(t, "0 a", lines[0])
	assert.Equal(t, "1 z", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "2 "), lines[2])
	assert.Len(t, lines[2], len("2 ")+2, "one replacement byte per unencodable rune")
	assert.Equal(t, "Please enter a file-number to restore:", lines[3])

	require.Len(t, r.calls, 1)
	assert.Equal(t, filepath.Join(dir, "日本.backup"), r.calls[0].path)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("console closed")
}

func TestSelector_ListingWriteFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.backup")
	r := &fakeRestorer{}
	s, _ := newSelector(dir, "0\n", r)
	s.Out = failingWriter{}

	_, err := s.Run(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeResource))
	assert.Contains(t, err.Error(), "console closed")
	assert.Empty(t, r.calls)
}
