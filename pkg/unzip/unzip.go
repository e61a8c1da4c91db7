package unzip

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eatsapp/order-service/pkg/logger"
)

// gzipReader implements ReadCloser and replaces the Read
// method with a decompressing one.
type gzipReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func newGzipReader(body io.ReadCloser) (*gzipReader, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("new gzip reader: %w", err)
	}

	return &gzipReader{body: body, zr: zr}, nil
}

func (r gzipReader) Read(p []byte) (int, error) {
	return r.zr.Read(p)
}

func (r *gzipReader) Close() error {
	if err := r.body.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return r.zr.Close()
}

// Middleware transparently decompresses gzip-encoded request bodies.
func Middleware(logger logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
				zr, err := newGzipReader(r.Body)
				if err != nil {
					logger.Error(err)
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				r.Body = zr
				defer zr.Close()
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(f)
	}
}
