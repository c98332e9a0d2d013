package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bamboo/internal/bam"
)

// passthrough keeps the whole payload as extra data.
type passthrough struct {
	bam.Base
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newRegistry registers a pass-through interpreter for each --interpret name.
func newRegistry(opts *RootOptions) (*bam.Registry, error) {
	reg := bam.NewRegistry()
	for _, name := range opts.Interpret {
		err := reg.Register(name, func(f *bam.File, v bam.Version) bam.Object {
			return &passthrough{Base: bam.NewBase(f, v)}
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// loadContainer reads the container at path. Failures are reported through
// the formatter and returned as ExitErrors.
func loadContainer(opts *RootOptions, cmd *cobra.Command, formatter *OutputFormatter, path string) (*bam.File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err)
	}

	reg, err := newRegistry(opts)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --interpret list", err)
	}

	f := bam.NewFile(
		bam.WithRegistry(reg),
		bam.WithLogger(newLogger(opts, cmd.ErrOrStderr())),
		bam.WithWarnTruncated(opts.WarnTruncated),
	)
	if err := f.LoadFile(path); err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, bam.ErrInvalidContainer) {
			code = ErrCodeInvalidBAM
		}
		return nil, formatter.Fail(ExitCommandError, code, fmt.Sprintf("failed to load %s", path), err)
	}
	formatter.VerboseLog("Loaded %s: %d object(s), %d handle(s)", f.Filename(), f.Len(), len(f.Handles()))
	return f, nil
}
