package cli

import (
	"errors"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/merge"
	"github.com/panelarc/panelarc/internal/slide"
	"github.com/panelarc/panelarc/internal/store"
)

// openStore opens the archive database named by the global --db flag.
func openStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	return openStoreAt(opts.DBPath, formatter)
}

func openStoreAt(path string, formatter *OutputFormatter) (*store.Store, error) {
	s, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return s, nil
}

// classify maps a domain error onto its CLI error code and exit code.
// Misuse of the command (unknown archive, bad config) exits 2; failures
// of the data itself (conflicts, unresolvable merges) exit 1.
func classify(err error) (code string, exitCode int) {
	var cfgErr *slide.ConfigError
	switch {
	case errors.Is(err, store.ErrArchiveNotFound):
		return ErrCodeNotFound, ExitCommandError
	case archive.IsDuplicateKey(err):
		return ErrCodeDuplicate, ExitFailure
	case archive.IsInconsistentKind(err):
		return ErrCodeKindMismatch, ExitFailure
	case merge.IsUnresolvable(err):
		return ErrCodeUnresolvable, ExitFailure
	case merge.IsFieldCollision(err):
		return ErrCodeCollision, ExitFailure
	case merge.IsKindMismatch(err):
		return ErrCodeKindMismatch, ExitFailure
	case errors.As(err, &cfgErr):
		return ErrCodeBadConfig, ExitCommandError
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// fail renders a domain error and converts it into an ExitError.
func fail(formatter *OutputFormatter, err error) error {
	code, exitCode := classify(err)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(exitCode, code, err)
}
