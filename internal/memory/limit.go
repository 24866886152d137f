package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"medialist/internal/logging"

	"github.com/dustin/go-humanize"
)

// DefaultMemoryRatio is the share of the container limit given to the Go heap.
const DefaultMemoryRatio = 0.90

// Source names where a configured limit came from.
type Source string

const (
	SourceNone        Source = "none"
	SourceGoMemLimit  Source = "GOMEMLIMIT"
	SourceMemoryLimit Source = "MEMORY_LIMIT"
)

// Result describes the limit in effect after configuration.
type Result struct {
	Configured     bool
	Source         Source
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv applies the limit described by the process environment.
// Call it before the catalog is opened.
func ConfigureFromEnv() Result {
	return configure(os.Getenv, debug.SetMemoryLimit)
}

// configure resolves the limit from getenv and applies it with setLimit,
// which follows debug.SetMemoryLimit semantics.
func configure(getenv func(string) string, setLimit func(int64) int64) Result {
	if v := getenv("GOMEMLIMIT"); v != "" {
		// The runtime parsed GOMEMLIMIT at startup; a negative input only reads it.
		limit := setLimit(-1)
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		if limit <= 0 || limit == math.MaxInt64 {
			return Result{Source: SourceGoMemLimit}
		}
		return Result{Configured: true, Source: SourceGoMemLimit, GoMemLimit: limit}
	}

	raw := strings.TrimSpace(getenv("MEMORY_LIMIT"))
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving the Go memory limit alone")
		return Result{Source: SourceNone}
	}
	containerLimit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Result{Source: SourceNone}
	}

	ratio := parseRatio(getenv("MEMORY_RATIO"))
	goLimit := int64(float64(containerLimit) * ratio)
	setLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		humanize.IBytes(uint64(goLimit)), ratio*100, humanize.IBytes(uint64(containerLimit)))

	return Result{
		Configured:     true,
		Source:         SourceMemoryLimit,
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	ratio, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", raw, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}
