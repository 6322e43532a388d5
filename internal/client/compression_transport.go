package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const acceptEncoding = "gzip, br, zstd"

// compressionTransport advertises gzip, brotli and zstd and decodes the response
// body transparently. Caption payloads are verbose XML and compress very well.
type compressionTransport struct {
	next http.RoundTripper
}

func newCompressionTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &compressionTransport{next: next}
}

func (t *compressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	decoded, err := decodeBody(contentEncoding(resp.Header.Get("Content-Encoding")), resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	if decoded == nil {
		return resp, nil
	}

	resp.Body = &decodedBody{ReadCloser: decoded, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

// decodeBody returns nil, nil for identity and unknown encodings.
func decodeBody(encoding string, body io.Reader) (io.ReadCloser, error) {
	switch encoding {
	case "gzip", "x-gzip":
		return gzip.NewReader(body)
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, nil
	}
}

// decodedBody closes the decoder and then the wire body.
type decodedBody struct {
	io.ReadCloser
	raw io.ReadCloser
}

func (d *decodedBody) Close() error {
	decErr := d.ReadCloser.Close()
	rawErr := d.raw.Close()
	if decErr != nil {
		return decErr
	}
	return rawErr
}

// contentEncoding returns the outermost (last listed) coding in lower case.
func contentEncoding(header string) string {
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}
