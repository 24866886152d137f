// Package main is the medialist command-line tool.
//
// It works on the same catalog the daemon serves. The scan command walks
// library roots and adds new movies; the other commands read or reset the
// catalog. Configuration comes from the daemon's environment variables, with
// --db-dir and per-command flags taking precedence.
//
// Scans take the catalog's scan lock, so running one while the daemon is
// scanning fails instead of interleaving writes.
package main
