package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.wroteHeader {
		return
	}
	rec.status = code
	rec.wroteHeader = true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(b)
	rec.written += int64(n)
	return n, err
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// LoggingConfig holds configuration for the access log middleware
type LoggingConfig struct {
	// SkipPaths are path prefixes that are never logged
	SkipPaths       []string
	LogHealthChecks bool
	// LogProgressPolls logs GET /api/scan/progress, which clients poll often
	LogProgressPolls bool
}

// DefaultLoggingConfig returns the default configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:       []string{"/metrics"},
		LogHealthChecks: true,
	}
}

const progressPath = "/api/scan/progress"

var healthCheckPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

func (c LoggingConfig) skip(path string) bool {
	for _, prefix := range c.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if healthCheckPaths[path] {
		return !c.LogHealthChecks
	}
	return path == progressPath && !c.LogProgressPolls
}

// Logger returns access log middleware writing one W3C Extended Log Format
// line per request:
//
//	date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken sc(Content-Encoding) cs(User-Agent) cs(Referer)
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			entry := newAccessEntry(r, rec, time.Since(start))
			//nolint:gosec // G706: request fields pass through sanitizeLogField.
			log.Println(entry.String())
		})
	}
}

// accessEntry is one access log record with every field already sanitized.
type accessEntry struct {
	at        time.Time
	clientIP  string
	method    string
	path      string
	query     string
	status    int
	bytes     int64
	elapsed   time.Duration
	encoding  string
	userAgent string
	referer   string
}

func newAccessEntry(r *http.Request, rec *statusRecorder, elapsed time.Duration) accessEntry {
	return accessEntry{
		at:        time.Now().UTC(),
		clientIP:  sanitizeLogField(clientIP(r)),
		method:    sanitizeLogField(r.Method),
		path:      sanitizeLogField(r.URL.Path),
		query:     sanitizeLogField(r.URL.RawQuery),
		status:    rec.status,
		bytes:     rec.written,
		elapsed:   elapsed,
		encoding:  rec.Header().Get("Content-Encoding"),
		userAgent: sanitizeLogField(r.Header.Get("User-Agent")),
		referer:   sanitizeLogField(r.Header.Get("Referer")),
	}
}

func (e accessEntry) String() string {
	fields := []string{
		e.at.Format("2006-01-02"),
		e.at.Format("15:04:05"),
		dash(e.clientIP),
		e.method,
		e.path,
		dash(e.query),
		strconv.Itoa(e.status),
		strconv.FormatInt(e.bytes, 10),
		strconv.FormatInt(e.elapsed.Milliseconds(), 10),
		dash(e.encoding),
		dash(quoteField(e.userAgent)),
		dash(quoteField(e.referer)),
	}
	return strings.Join(fields, " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// quoteField wraps values containing whitespace or quotes in double quotes,
// doubling embedded quotes.
func quoteField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// sanitizeLogField strips control characters from user-controlled fields so a
// request cannot forge log lines or emit terminal escapes.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\x7f', r < 0x20 && r != '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
