package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/bamboo/internal/dump"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.bam>",
		Short: "List the handles and objects of a container",
		Long: `List the type handles and objects of a BAM container.

Text output lists handles ("id: name <- parents") and objects ("id: type",
or "id: data, type (n bytes)" for objects without an interpreter). JSON
output is the canonical summary with payload digests.

Examples:
  bamboo dump scene.bam
  bamboo dump scene.bam --interpret PandaNode,GeomNode
  bamboo dump scene.bam --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, args[0], cmd)
		},
	}
}

func runDump(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	f, err := loadContainer(opts, cmd, formatter, path)
	if err != nil {
		return err
	}

	summary := dump.Snapshot(f)
	if opts.Format == "json" {
		data, err := summary.Canonical()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode summary", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	text := "Handles:\n" + summary.HandlesText() + "\n\nObjects:\n" + summary.ObjectsText()
	return formatter.Success(text)
}
