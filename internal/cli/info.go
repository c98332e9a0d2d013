package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// InfoResult summarizes a container.
type InfoResult struct {
	Path           string   `json:"path"`
	Version        string   `json:"version"`
	Endian         string   `json:"endian"`
	StdFloatDouble bool     `json:"stdfloat_double"`
	Objects        int      `json:"objects"`
	Handles        int      `json:"handles"`
	FileData       int      `json:"file_data"`
	FreedObjects   int      `json:"freed_objects"`
	Nesting        int      `json:"nesting"`
	UnknownHandles []string `json:"unknown_handles"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.bam>",
		Short: "Show header and table sizes of a container",
		Long: `Show the header and table sizes of a BAM container.

Examples:
  bamboo info scene.bam
  bamboo info scene.bam --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], cmd)
		},
	}
}

func runInfo(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	f, err := loadContainer(opts, cmd, formatter, path)
	if err != nil {
		return err
	}

	h := f.Header()
	unknown := f.UnknownHandles()
	if unknown == nil {
		unknown = []string{}
	}
	result := InfoResult{
		Path:           f.Filename(),
		Version:        h.Version.String(),
		Endian:         h.Endian.String(),
		StdFloatDouble: h.StdFloatDouble,
		Objects:        f.Len(),
		Handles:        len(f.Handles()),
		FileData:       len(f.FileData()),
		FreedObjects:   len(f.FreedObjects()),
		Nesting:        f.Nesting(),
		UnknownHandles: unknown,
	}

	var b strings.Builder
	fmt.Fprintln(&b, f.String())
	fmt.Fprintf(&b, "Path:      %s\n", result.Path)
	fmt.Fprintf(&b, "Objects:   %d\n", result.Objects)
	fmt.Fprintf(&b, "Handles:   %d\n", result.Handles)
	fmt.Fprintf(&b, "File data: %d\n", result.FileData)
	if result.FreedObjects > 0 {
		fmt.Fprintf(&b, "Freed:     %d\n", result.FreedObjects)
	}
	if result.Nesting != 0 {
		fmt.Fprintf(&b, "Nesting:   %d (unbalanced)\n", result.Nesting)
	}
	if len(unknown) > 0 {
		fmt.Fprintf(&b, "Unknown:   %s\n", strings.Join(unknown, ", "))
	}
	return formatter.Result(result, strings.TrimSuffix(b.String(), "\n"))
}
