package backup

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ConsoleWriter encodes operator-facing text with enc. Characters enc cannot
// represent are written as its replacement byte. Close flushes any buffered
// bytes; it does not close w.
func ConsoleWriter(w io.Writer, enc encoding.Encoding) io.WriteCloser {
	if enc == nil || enc == unicode.UTF8 {
		return nopWriteCloser{w}
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
