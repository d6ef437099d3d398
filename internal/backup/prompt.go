package backup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/lupppig/sitectl/internal/errors"
)

var ErrSelectionOutOfRange = apperrors.New(apperrors.TypeInput, "Number option out of bounds.", "Pick one of the listed numbers.")

// ReadSelection reads one line from in and parses it as an index into a
// list of n entries.
func ReadSelection(in io.Reader, n int) (int, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, apperrors.Wrap(err, apperrors.TypeInput, "failed to read selection", "")
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return 0, apperrors.New(apperrors.TypeInput, "no selection entered", "Type one of the listed numbers, or pass --file.")
	}

	idx, err := strconv.Atoi(answer)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.TypeInput, fmt.Sprintf("invalid selection %q", answer), "Type one of the listed numbers.")
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("selection %d of %d: %w", idx, n, ErrSelectionOutOfRange)
	}
	return idx, nil
}
