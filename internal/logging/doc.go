// Package logging provides a simple leveled logging interface for medialist.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-entry crawl decisions)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true.
//
// Components that log a lot (the indexer, the catalog) use a scoped Logger:
//
//	log := logging.For("indexer")
//	log.Info("Scanning root %s", root) // [INFO] [indexer] Scanning root /media
package logging
