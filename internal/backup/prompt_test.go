package backup

import (
	"strings"
	"testing"

	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestReadSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		n       int
		want    int
		wantErr error
		errType apperrors.ErrorType
	}{
		{name: "first", input: "0\n", n: 3, want: 0},
		{name: "last", input: "2\n", n: 3, want: 2},
		{name: "whitespace", input: "  1 \r\n", n: 3, want: 1},
		{name: "no newline", input: "1", n: 3, want: 1},
		{name: "too large", input: "3\n", n: 3, wantErr: ErrSelectionOutOfRange},
		{name: "negative", input: "-1\n", n: 3, wantErr: ErrSelectionOutOfRange},
		{name: "text", input: "abc\n", n: 3, errType: apperrors.TypeInput},
		{name: "empty", input: "", n: 3, errType: apperrors.TypeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSelection(strings.NewReader(tt.input), tt.n)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errType != "":
				assert.True(t, apperrors.IsType(err, tt.errType))
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
