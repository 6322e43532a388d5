package parser

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with character encoding detection and conversion to UTF-8.
// Timed-text payloads are not always served as UTF-8, and goquery expects UTF-8 input.
//
// The charset is taken from, in order:
// 1. Byte order marks (BOM)
// 2. The charset parameter of contentType (usually the response Content-Type header)
// 3. <meta charset="..."> tags
// 4. Heuristic detection over the first kilobyte
//
// If the content is already UTF-8, this is a no-op wrapper with minimal overhead.
// An empty body yields an empty reader, not an error.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	r, err := charset.NewReader(body, contentType)
	if errors.Is(err, io.EOF) {
		return bytes.NewReader(nil), nil
	}
	return r, err
}
