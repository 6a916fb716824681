package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chloe/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	SQLite string
	File   string
	As     string
}

// ExportResult reports a finished SQLite export.
type ExportResult struct {
	File string `json:"file" yaml:"file"`
	Rows int    `json:"rows" yaml:"rows"`
}

func (r ExportResult) String() string {
	return fmt.Sprintf("Exported %d rows to %s", r.Rows, r.File)
}

// FileExportResult reports a finished file export.
type FileExportResult struct {
	export.FileResult `yaml:",inline"`
}

func (r FileExportResult) String() string {
	kind := string(r.Format)
	if r.Compressed {
		kind += "+zstd"
	}
	return fmt.Sprintf("Exported %d bytes (%s) to %s\nblake3 %s", r.Bytes, kind, r.File, r.Checksum)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the document to SQLite or a file",
		Long: `Export the whole document. Exactly one destination is required.

--sqlite writes every leaf to a fresh SQLite database, one row per leaf in
table "leaves" (path, depth, kind, value).

--file writes the document as a single JSON or CBOR file. The encoding comes
from --as, or from the file extension when --as is not given. A ".zst" suffix
compresses the file with zstd. The BLAKE3 checksum of the written bytes is
reported.

An existing destination file is replaced.

Examples:
  chloe export --sqlite ./chloe.db
  sqlite3 ./chloe.db "SELECT path, value FROM leaves WHERE kind = 'int'"
  chloe export --file ./backup.cbor.zst`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.File != "" {
				return exportFile(opts, cmd)
			}

			sess, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			rows, err := export.ToSQLite(commandContext(cmd), opts.SQLite, sess.store.Root())
			if err != nil {
				return WrapExitError(ExitFailure, "export failed", err)
			}
			sess.logger.Info("document exported", "file", opts.SQLite, "rows", rows)
			return sess.out.Success(ExportResult{File: opts.SQLite, Rows: rows})
		},
	}

	cmd.Flags().StringVar(&opts.SQLite, "sqlite", "", "path of the SQLite file to write")
	cmd.Flags().StringVar(&opts.File, "file", "", "path of the JSON or CBOR file to write")
	cmd.Flags().StringVar(&opts.As, "as", "", "file encoding: json or cbor (default from extension)")
	cmd.MarkFlagsOneRequired("sqlite", "file")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "file")

	return cmd
}

func exportFile(opts *ExportOptions, cmd *cobra.Command) error {
	format := export.FormatFromPath(opts.File)
	if opts.As != "" {
		f, err := export.ParseFormat(opts.As)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --as", err)
		}
		format = f
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := export.ToFile(opts.File, format, sess.store.Root())
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}
	sess.logger.Info("document exported",
		"file", res.File,
		"format", res.Format,
		"bytes", res.Bytes,
		"blake3", res.Checksum,
	)
	return sess.out.Success(FileExportResult{FileResult: res})
}
