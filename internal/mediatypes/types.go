package mediatypes

import "strings"

// DefaultVideoExtensions is the allow-list used when none is configured.
var DefaultVideoExtensions = []string{"avi", "mp4", "mkv", "m4v"}

// SortField specifies which catalog column to sort by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByPath sorts results by canonical path.
	SortByPath SortField = "path"
	// SortByBasename sorts results by file name.
	SortByBasename SortField = "basename"
	// SortBySize sorts results by file size.
	SortBySize SortField = "size"
	// SortByModified sorts results by modification time.
	SortByModified SortField = "modified"
	// SortByAdded sorts results by the time the file was catalogued.
	SortByAdded SortField = "added"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// ParseSortField returns the SortField named by s, or SortByPath when s is
// empty or unknown.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByPath, SortByBasename, SortBySize, SortByModified, SortByAdded:
		return f
	default:
		return SortByPath
	}
}

// ParseSortOrder returns SortDesc for "desc" (any case) and SortAsc otherwise.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// ExtensionOf returns the lowercased substring after the final "." in name,
// or "" when name has no dot. No other normalisation is applied.
func ExtensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// ExtensionSet is a case-insensitive extension allow-list. Keys are stored
// lowercase without a leading dot.
type ExtensionSet map[string]bool

// NewExtensionSet builds an allow-list from configured extensions. Entries
// may carry a leading dot and any case; empty entries are ignored.
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = true
		}
	}
	return set
}

// Contains reports whether ext is in the allow-list.
func (s ExtensionSet) Contains(ext string) bool {
	return s[strings.ToLower(ext)]
}

// Matches reports whether the file name's extension is in the allow-list.
func (s ExtensionSet) Matches(name string) bool {
	ext := ExtensionOf(name)
	return ext != "" && s[ext]
}

// MimeTypes maps lowercase extensions (without the dot) to their MIME types.
var MimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"webm": "video/webm",
	"m4v":  "video/x-m4v",
	"mpeg": "video/mpeg",
	"mpg":  "video/mpeg",
	"3gp":  "video/3gpp",
	"ts":   "video/mp2t",
}

// GetMimeType returns the MIME type for a file name based on its extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	if mime, ok := MimeTypes[ExtensionOf(name)]; ok {
		return mime
	}
	return "application/octet-stream"
}
