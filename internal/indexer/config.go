package indexer

import "medialist/internal/mediatypes"

const (
	// DefaultMinMovieSize is the smallest file size, in bytes, considered a movie (50 MiB).
	DefaultMinMovieSize int64 = 52428800

	// DefaultMaxSearchDepth bounds recursion below each root. Roots are depth 1.
	DefaultMaxSearchDepth = 7

	// boringThreshold is the number of boring entries, with no interesting
	// ones, after which a directory is considered too boring.
	boringThreshold = 5

	// progressInterval is the number of processed entries between progress events.
	progressInterval = 10
)

// Config is the resolved configuration consumed by the scanner.
type Config struct {
	LibraryRoots        []string
	VideoFileExtensions []string
	MinMovieSize        int64
	MaxSearchDepth      int
}

// DefaultConfig returns the scanner defaults with no library roots.
func DefaultConfig() Config {
	return Config{
		VideoFileExtensions: append([]string(nil), mediatypes.DefaultVideoExtensions...),
		MinMovieSize:        DefaultMinMovieSize,
		MaxSearchDepth:      DefaultMaxSearchDepth,
	}
}
