package main

import (
	"errors"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/importer"
	"github.com/matsen/refsplit/internal/reconcile"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, env override or flag value)
	ExitDataError   = 3 // Data error (unreadable input, missing column, empty title)
)

// exitCodeFor maps an error to the exit code a command should return.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case reconcile.IsDataError(err), errors.Is(err, importer.ErrMalformedInput):
		return ExitDataError
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	default:
		return ExitError
	}
}
