package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bamboo/internal/dump"
	"github.com/roach88/bamboo/internal/store"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	DBPath string
}

// IndexedFile is one container recorded by the index command.
type IndexedFile struct {
	ID      string   `json:"id"`
	Path    string   `json:"path"`
	Objects int      `json:"objects"`
	SameAs  []string `json:"same_as,omitempty"` // earlier entries with an identical summary
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index <file.bam>...",
		Short: "Record containers in an SQLite index",
		Long: `Load one or more BAM containers and record their handles, objects
and file data in an SQLite database.

Examples:
  bamboo index scene.bam --db index.db
  bamboo index models/*.bam --db index.db --interpret PandaNode`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite index (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runIndex(opts *IndexOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open index", err)
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	indexed := make([]IndexedFile, 0, len(paths))
	var b strings.Builder
	for _, path := range paths {
		f, err := loadContainer(opts.RootOptions, cmd, formatter, path)
		if err != nil {
			return err
		}
		entry := IndexedFile{Path: f.Filename(), Objects: f.Len()}

		digest, err := dump.Snapshot(f).Digest()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to summarize container", err)
		}
		prior, err := st.FilesByDigest(ctx, digest)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to query index", err)
		}
		for _, p := range prior {
			entry.SameAs = append(entry.SameAs, p.ID)
		}

		entry.ID, err = st.IndexFile(ctx, f, f.Filename())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to index %s", path), err)
		}
		indexed = append(indexed, entry)

		fmt.Fprintf(&b, "%s  %s (%d objects)", entry.ID, entry.Path, entry.Objects)
		if len(entry.SameAs) > 0 {
			fmt.Fprintf(&b, ", same as %s", strings.Join(entry.SameAs, ", "))
		}
		b.WriteByte('\n')
	}

	return formatter.Result(indexed, strings.TrimSuffix(b.String(), "\n"))
}

// ObjectsOptions holds flags for the objects command.
type ObjectsOptions struct {
	*RootOptions
	DBPath string
	Type   string // restrict to this type and its descendants
}

// IndexedObject is the JSON form of an indexed object row.
type IndexedObject struct {
	ID          uint32 `json:"id"`
	HandleID    uint16 `json:"handle_id"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	Interpreted bool   `json:"interpreted"`
	ExtraBytes  int    `json:"extra_bytes"`
	Digest      string `json:"digest"`
}

// NewObjectsCommand creates the objects command.
func NewObjectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObjectsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "objects <file-id>",
		Short: "List indexed objects of a container",
		Long: `List the objects recorded for an indexed container.

With --type, only objects whose type is the named type or one of its
descendants are listed.

Examples:
  bamboo objects 0190a5c4-... --db index.db
  bamboo objects 0190a5c4-... --db index.db --type PandaNode`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObjects(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite index (required)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only list objects of this type or its descendants")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runObjects(opts *ObjectsOptions, fileID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.DBPath); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("index not found: %s", opts.DBPath), err)
	}
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open index", err)
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	if _, err := st.File(ctx, fileID); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file %s is not indexed", fileID), err)
	}

	var objs []store.ObjectInfo
	if opts.Type != "" {
		objs, err = st.ObjectsOfType(ctx, fileID, opts.Type)
	} else {
		objs, err = st.Objects(ctx, fileID)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to query objects", err)
	}

	out := make([]IndexedObject, len(objs))
	var b strings.Builder
	for i, o := range objs {
		out[i] = IndexedObject{
			ID:          o.ID,
			HandleID:    uint16(o.HandleID),
			Type:        o.Type,
			Size:        o.Size,
			Interpreted: o.Interpreted,
			ExtraBytes:  o.ExtraBytes,
			Digest:      o.Digest,
		}
		if o.Interpreted {
			fmt.Fprintf(&b, "%d: %s\n", o.ID, o.Type)
		} else {
			fmt.Fprintf(&b, "%d: data, %s (%d bytes)\n", o.ID, o.Type, o.Size)
		}
	}
	if len(objs) == 0 {
		b.WriteString("No objects found.")
	}

	return formatter.Result(out, strings.TrimSuffix(b.String(), "\n"))
}

// cmdContext returns the command's context, or Background when it was
// executed without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
