package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RoundtripOptions holds flags for the roundtrip command.
type RoundtripOptions struct {
	*RootOptions
	Output string // optional path for the re-encoded container
}

// RoundtripResult reports whether a load/write cycle preserved the bytes.
type RoundtripResult struct {
	Path        string `json:"path"`
	Identical   bool   `json:"identical"`
	InputBytes  int    `json:"input_bytes"`
	OutputBytes int    `json:"output_bytes"`
	FirstDiff   int    `json:"first_diff"` // -1 when identical
}

// NewRoundtripCommand creates the roundtrip command.
func NewRoundtripCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoundtripOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roundtrip <file.bam>",
		Short: "Load and re-encode a container, comparing the bytes",
		Long: `Load a BAM container, write it back at the same version and compare
the result with the input.

Exit codes:
  0 - Output is byte-identical
  1 - Output differs
  2 - Command error (missing file, malformed container, etc.)

Examples:
  bamboo roundtrip scene.bam
  bamboo roundtrip scene.bam -o rewritten.bam`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundtrip(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the re-encoded container to this path")

	return cmd
}

func runRoundtrip(opts *RoundtripOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	f, err := loadContainer(opts.RootOptions, cmd, formatter, path)
	if err != nil {
		return err
	}

	input, err := os.ReadFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to re-read input", err)
	}
	output, err := f.Bytes()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to encode container", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, output, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", opts.Output), err)
		}
		formatter.VerboseLog("Wrote %d bytes to %s", len(output), opts.Output)
	}

	result := RoundtripResult{
		Path:        path,
		Identical:   bytes.Equal(input, output),
		InputBytes:  len(input),
		OutputBytes: len(output),
		FirstDiff:   firstDiff(input, output),
	}

	text := fmt.Sprintf("✓ %s: %d bytes, identical", path, len(input))
	if !result.Identical {
		text = fmt.Sprintf("✗ %s: input %d bytes, output %d bytes, first difference at offset %d",
			path, len(input), len(output), result.FirstDiff)
	}
	if err := formatter.Result(result, text); err != nil {
		return err
	}
	if !result.Identical {
		return NewExitError(ExitFailure, "round trip output differs")
	}
	return nil
}

// firstDiff returns the offset of the first differing byte, or -1.
func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
