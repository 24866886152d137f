package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// Level is the gzip compression level (gzip.BestSpeed to gzip.BestCompression)
	Level int
	// CompressibleTypes are the media types that are compressed
	CompressibleTypes []string
}

// DefaultCompressionConfig returns sensible defaults for compression
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		// Library pages and stats are JSON; /metrics is text.
		CompressibleTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

// gzipPools holds one *sync.Pool of writers per compression level.
var gzipPools sync.Map

func acquireGzip(w io.Writer, level int) (*gzip.Writer, func()) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	p, _ := gzipPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			zw, _ := gzip.NewWriterLevel(io.Discard, level)
			return zw
		},
	})
	pool := p.(*sync.Pool)
	zw := pool.Get().(*gzip.Writer)
	zw.Reset(w)
	return zw, func() { pool.Put(zw) }
}

type compressState int

const (
	stateBuffering compressState = iota
	statePlain
	stateGzip
)

// compressWriter buffers the start of a response until it can decide whether
// to compress it, then streams the rest.
type compressWriter struct {
	http.ResponseWriter
	config  CompressionConfig
	state   compressState
	status  int
	buf     []byte
	zw      *gzip.Writer
	release func()
}

func newCompressWriter(w http.ResponseWriter, config CompressionConfig) *compressWriter {
	return &compressWriter{
		ResponseWriter: w,
		config:         config,
		status:         http.StatusOK,
		buf:            make([]byte, 0, config.MinSize+1),
	}
}

// WriteHeader records the status; it is sent once the encoding is decided.
func (c *compressWriter) WriteHeader(status int) {
	if c.state == stateBuffering {
		c.status = status
	}
}

func (c *compressWriter) Write(data []byte) (int, error) {
	switch c.state {
	case stateGzip:
		return c.zw.Write(data)
	case statePlain:
		return c.ResponseWriter.Write(data)
	}

	c.buf = append(c.buf, data...)
	if len(c.buf) > c.config.MinSize {
		if err := c.decide(); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (c *compressWriter) compressible() bool {
	h := c.Header()
	if h.Get("Content-Encoding") != "" || len(c.buf) < c.config.MinSize {
		return false
	}
	if c.status == http.StatusNoContent || c.status == http.StatusNotModified {
		return false
	}
	mediaType, _, _ := strings.Cut(h.Get("Content-Type"), ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range c.config.CompressibleTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// decide sends the header and the buffered bytes.
func (c *compressWriter) decide() error {
	if c.state != stateBuffering {
		return nil
	}
	buffered := c.buf
	c.buf = nil

	if !c.compressible() {
		c.state = statePlain
		c.ResponseWriter.WriteHeader(c.status)
		_, err := c.ResponseWriter.Write(buffered)
		return err
	}

	c.state = stateGzip
	h := c.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	c.zw, c.release = acquireGzip(c.ResponseWriter, c.config.Level)
	c.ResponseWriter.WriteHeader(c.status)
	_, err := c.zw.Write(buffered)
	return err
}

// Close flushes any buffered response and returns the gzip writer to its pool.
func (c *compressWriter) Close() error {
	err := c.decide()
	if c.zw != nil {
		if cerr := c.zw.Close(); err == nil {
			err = cerr
		}
		c.release()
		c.zw = nil
	}
	return err
}

// Flush implements http.Flusher. It forces the encoding decision.
func (c *compressWriter) Flush() {
	_ = c.decide()
	if c.zw != nil {
		_ = c.zw.Flush()
	}
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// acceptsGzip reports whether the Accept-Encoding header allows gzip with a
// non-zero quality.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		q, ok := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !ok {
			return true
		}
		if v, err := strconv.ParseFloat(q, 64); err == nil && v > 0 {
			return true
		}
	}
	return false
}

// Compression returns a middleware that gzips compressible responses
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// HEAD responses carry no body to compress
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			cw := newCompressWriter(w, config)
			defer cw.Close()

			next.ServeHTTP(cw, r)
		})
	}
}
