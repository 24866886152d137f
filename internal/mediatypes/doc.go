// Package mediatypes provides shared type definitions and utilities for media file
// handling across medialist.
//
// This package exists as a dependency-free foundation that can be imported by other
// packages without creating import cycles. It contains primitive types, constants,
// and pure utility functions with no external dependencies beyond the standard library.
//
// # Extension Matching
//
// The scanner decides whether a file is interesting by its extension, taken as
// the lowercased text after the final dot:
//
//	allowed := mediatypes.NewExtensionSet([]string{"mp4", ".MKV"})
//	allowed.Matches("Holiday.MP4")  // true
//	allowed.Matches("notes.txt")    // false
//	mediatypes.ExtensionOf("a.b.c") // "c"
//
// # Sorting
//
// SortField and SortOrder name the catalog listing order shared by the HTTP API,
// the CLI and the database:
//
//	field := mediatypes.ParseSortField(r.URL.Query().Get("sort"))
//	order := mediatypes.ParseSortOrder(r.URL.Query().Get("order"))
//
// # MIME Types
//
//	mediatypes.GetMimeType("movie.mkv") // "video/x-matroska"
package mediatypes
