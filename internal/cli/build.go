package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bamboo/internal/harness"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string
}

// BuildResult describes a container written from a scenario.
type BuildResult struct {
	Scenario string `json:"scenario"`
	Output   string `json:"output"`
	Bytes    int    `json:"bytes"`
	Objects  int    `json:"objects"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <scenario>",
		Short: "Write the container a scenario describes",
		Long: `Assemble the container described by a YAML or CUE scenario and write it
to disk.

Examples:
  bamboo build scenarios/root_child.yaml -o root_child.bam`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output path (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario not found: %s", path), err)
	}
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, "failed to load scenario", err)
	}

	f, data, err := harness.Build(scenario, harness.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, "failed to build scenario", err)
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", opts.Output), err)
	}

	result := BuildResult{
		Scenario: scenario.Name,
		Output:   opts.Output,
		Bytes:    len(data),
		Objects:  f.Len(),
	}
	text := fmt.Sprintf("Wrote %s: %d bytes, %d object(s)", opts.Output, len(data), f.Len())
	return formatter.Result(result, text)
}
