package indexer

import (
	"io/fs"
	"strings"

	"medialist/internal/mediatypes"
)

// EntryClass is the scanner's verdict on a single directory entry.
type EntryClass int

const (
	// ClassHidden is any entry whose name starts with a dot.
	ClassHidden EntryClass = iota
	// ClassSymlink is a symbolic link, never followed.
	ClassSymlink
	// ClassDirectory is a subdirectory, deferred for recursion.
	ClassDirectory
	// ClassInteresting is a large enough regular file with an allowed extension.
	ClassInteresting
	// ClassBoring is a regular file smaller than the minimum movie size.
	ClassBoring
	// ClassUnclassified is a large enough regular file with any other extension.
	ClassUnclassified
	// ClassUnusual is a device, fifo, socket or other special file.
	ClassUnusual
)

func (c EntryClass) String() string {
	switch c {
	case ClassHidden:
		return "hidden"
	case ClassSymlink:
		return "symlink"
	case ClassDirectory:
		return "directory"
	case ClassInteresting:
		return "interesting"
	case ClassBoring:
		return "boring"
	case ClassUnclassified:
		return "unclassified"
	default:
		return "unusual"
	}
}

// EntryClassifier decides what the scanner does with each directory entry.
type EntryClassifier struct {
	extensions mediatypes.ExtensionSet
	minSize    int64
}

// NewEntryClassifier returns a classifier for the given extension allow-list
// and minimum movie size.
func NewEntryClassifier(extensions []string, minSize int64) EntryClassifier {
	return EntryClassifier{
		extensions: mediatypes.NewExtensionSet(extensions),
		minSize:    minSize,
	}
}

// IsHidden reports whether name is a hidden entry. Hidden entries are
// classified without reading their metadata.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Classify returns the class of the entry called name. info must come from
// lstat so that symlinks are seen as links; it may be nil for hidden names.
func (c EntryClassifier) Classify(name string, info fs.FileInfo) EntryClass {
	if IsHidden(name) {
		return ClassHidden
	}

	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		return ClassSymlink
	case mode.IsDir():
		return ClassDirectory
	case !mode.IsRegular():
		return ClassUnusual
	case info.Size() < c.minSize:
		return ClassBoring
	case c.extensions.Matches(name):
		return ClassInteresting
	default:
		return ClassUnclassified
	}
}

// directoryStats counts one directory's direct children for the pruning
// heuristic. Directories, unclassified and unusual entries count in neither bucket.
type directoryStats struct {
	interesting int
	boring      int
}

func (s *directoryStats) add(class EntryClass) {
	switch class {
	case ClassInteresting:
		s.interesting++
	case ClassHidden, ClassSymlink, ClassBoring:
		s.boring++
	}
}

func (s directoryStats) tooBoring() bool {
	return s.interesting == 0 && s.boring > boringThreshold
}
