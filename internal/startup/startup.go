package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"medialist/internal/indexer"
	"medialist/internal/logging"
	"medialist/internal/mediatypes"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// DatabaseFile is the catalog file name inside DATABASE_DIR.
const DatabaseFile = "media.db"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	LibraryRoots        []string
	VideoFileExtensions []string
	MinMovieSize        int64
	MaxSearchDepth      int

	DatabaseDir     string
	Port            string
	ScanInterval    time.Duration
	ScanOnStart     bool
	MetricsEnabled  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string
}

// ScanConfig resolves the configuration consumed by the scanner.
func (c *Config) ScanConfig() indexer.Config {
	return indexer.Config{
		LibraryRoots:        append([]string(nil), c.LibraryRoots...),
		VideoFileExtensions: append([]string(nil), c.VideoFileExtensions...),
		MinMovieSize:        c.MinMovieSize,
		MaxSearchDepth:      c.MaxSearchDepth,
	}
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	return loadFromEnv()
}

// Override adjusts configuration read from the environment before it is
// validated, typically from command-line flags.
type Override func(*Config)

// LoadEnvConfig loads configuration like LoadConfig without the banner and
// system information, applying overrides in order.
func LoadEnvConfig(overrides ...Override) (*Config, error) {
	return loadFromEnv(overrides...)
}

// loadFromEnv reads, logs and validates the environment without the banner.
func loadFromEnv(overrides ...Override) (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		LibraryRoots:        splitList(getEnv("LIBRARY_ROOTS", "")),
		VideoFileExtensions: splitList(getEnv("VIDEO_FILE_EXTENSIONS", strings.Join(mediatypes.DefaultVideoExtensions, ","))),
		MinMovieSize:        getEnvInt64("MIN_MOVIE_SIZE", indexer.DefaultMinMovieSize),
		MaxSearchDepth:      getEnvInt("MAX_SEARCH_DEPTH", indexer.DefaultMaxSearchDepth),
		DatabaseDir:         getEnv("DATABASE_DIR", "./data"),
		Port:                getEnv("PORT", "43590"),
		ScanInterval:        getEnvDuration("SCAN_INTERVAL", 0),
		ScanOnStart:         getEnvBool("SCAN_ON_START", true),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks:     getEnvBool("LOG_HEALTH_CHECKS", true),
	}
	for _, override := range overrides {
		override(config)
	}

	if config.MinMovieSize < 0 {
		logging.Warn("  Negative MIN_MOVIE_SIZE, using default: %d", indexer.DefaultMinMovieSize)
		config.MinMovieSize = indexer.DefaultMinMovieSize
	}
	if config.MaxSearchDepth < 1 {
		logging.Warn("  MAX_SEARCH_DEPTH must be at least 1, using default: %d", indexer.DefaultMaxSearchDepth)
		config.MaxSearchDepth = indexer.DefaultMaxSearchDepth
	}
	if config.ScanInterval < 0 {
		logging.Warn("  Negative SCAN_INTERVAL, periodic rescans disabled")
		config.ScanInterval = 0
	}

	logging.Info("  LIBRARY_ROOTS:          %s", strings.Join(config.LibraryRoots, ", "))
	logging.Info("  VIDEO_FILE_EXTENSIONS:  %s", strings.Join(config.VideoFileExtensions, ","))
	logging.Info("  MIN_MOVIE_SIZE:         %d (%s)", config.MinMovieSize, humanize.IBytes(uint64(config.MinMovieSize)))
	logging.Info("  MAX_SEARCH_DEPTH:       %d", config.MaxSearchDepth)
	logging.Info("  DATABASE_DIR:           %s", config.DatabaseDir)
	logging.Info("  PORT:                   %s", config.Port)
	logging.Info("  SCAN_INTERVAL:          %s", intervalString(config.ScanInterval))
	logging.Info("  SCAN_ON_START:          %v", config.ScanOnStart)
	logging.Info("  METRICS_ENABLED:        %v", config.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:      %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	if len(config.LibraryRoots) == 0 {
		logging.Warn("  No LIBRARY_ROOTS configured, scans will find nothing")
	}
	if len(config.VideoFileExtensions) == 0 {
		logging.Warn("  No VIDEO_FILE_EXTENSIONS configured, no file will be interesting")
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabaseDir = databaseDir
	config.DatabasePath = filepath.Join(databaseDir, DatabaseFile)
	logging.Info("  Database directory (absolute): %s", databaseDir)

	for i, root := range config.LibraryRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve library root %q: %w", root, err)
		}
		config.LibraryRoots[i] = abs
		// A missing root is reported by each scan, not here.
		if err := checkLibraryRoot(abs); err != nil {
			logging.Warn("  Library root %s: %v", abs, err)
		}
	}

	if err := ensureDirectory(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:         ENABLED (required)")
	logging.Info("    Periodic rescans: %s", enabledString(config.ScanInterval > 0))
	logging.Info("    Initial scan:     %s", enabledString(config.ScanOnStart))
	logging.Info("    Metrics:          %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func intervalString(d time.Duration) string {
	if d <= 0 {
		return "disabled"
	}
	return d.String()
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration, items int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
	logging.Info("  Catalogued items: %s", humanize.Comma(int64(items)))
}

// LogIndexerInit logs indexer initialization
func LogIndexerInit(config *Config) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INDEXER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Library roots:   %d", len(config.LibraryRoots))
	logging.Info("  Minimum size:    %s", humanize.IBytes(uint64(config.MinMovieSize)))
	logging.Info("  Max depth:       %d", config.MaxSearchDepth)
	logging.Info("  Rescan interval: %s", intervalString(config.ScanInterval))
	logging.Info("  Starting indexer...")
}

// LogIndexerStarted logs successful indexer start
func LogIndexerStarted() {
	logging.Info("  [OK] Indexer started")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
	logging.Info("  Registered routes: %d", len(routes))

	if logging.IsDebugEnabled() {
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Library:       http://0.0.0.0:%s/api/library", config.Port)
	logging.Info("    Scan:          POST http://0.0.0.0:%s/api/scan", config.Port)
	logging.Info("    Health:        http://0.0.0.0:%s/healthz", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
                    _ _       _ _     _
   _ __ ___   ___  __| (_) __ _| (_)___| |_
  | '_ ' _ \ / _ \/ _' | |/ _' | | / __| __|
  | | | | | |  __/ (_| | | (_| | | \__ \ |_
  |_| |_| |_|\___|\__,_|_|\__,_|_|_|___/\__|

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path string) error {
	logging.Debug("  Checking database directory: %s", path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func checkLibraryRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}

	if logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount, dirCount := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    %s: %d files, %d directories (top level)", path, fileCount, dirCount)
		}
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

// splitList splits a list on the OS path-list separator and on commas,
// dropping empty items.
func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == os.PathListSeparator
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvDuration accepts Go durations; "0" disables.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %s", key, value, intervalString(defaultValue))
		return defaultValue
	}
	return parsed
}
