package cli

import (
	"log/slog"
	"os"

	"github.com/roach88/photoduel/internal/blob"
	"github.com/roach88/photoduel/internal/engine"
	"github.com/roach88/photoduel/internal/store"
)

// setupLogging configures the default slog logger from the verbose flag.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// openEngine opens the database and blob directory and wires the engine.
// The returned cleanup closes the store.
func openEngine(opts *RootOptions) (*engine.Engine, *blob.DirStore, func(), error) {
	setupLogging(opts.Verbose)

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	cleanup := func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}

	blobs, err := blob.NewDirStore(opts.BlobDir)
	if err != nil {
		cleanup()
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open blob directory", err)
	}

	return engine.New(st, blobs), blobs, cleanup, nil
}
