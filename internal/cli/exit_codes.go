package cli

import (
	"context"
	"errors"

	clierrors "github.com/phpwatch/commitlog/internal/errors"
)

// Exit codes for the commitlog CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates an unclassified runtime failure
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 2

	// ExitInvalidConfig indicates configuration could not be loaded
	ExitInvalidConfig = 3

	// ExitInputError indicates an unreadable NEWS file or repository
	ExitInputError = 4

	// ExitRemoteError indicates GitHub or the download host failed
	ExitRemoteError = 5

	// ExitInterrupted indicates the command was cancelled by a signal
	ExitInterrupted = 130
)

// ExitCodeFor maps a command error to its exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	cliErr := clierrors.AsCLIError(err)
	if cliErr == nil {
		return ExitFailure
	}
	switch cliErr.Category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Configuration:
		return ExitInvalidConfig
	case clierrors.Input:
		return ExitInputError
	case clierrors.Remote:
		return ExitRemoteError
	default:
		return ExitFailure
	}
}
