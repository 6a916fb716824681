package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chloe/internal/store"
	"github.com/roach88/chloe/internal/value"
)

// ValueResult is the output of get and dump.
type ValueResult struct {
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Value any    `json:"value" yaml:"value"`

	v value.Value
}

func newValueResult(p store.Path, v value.Value) ValueResult {
	return ValueResult{Path: p.String(), Value: value.ToGo(v), v: v}
}

// String renders the value as indented JSON.
func (r ValueResult) String() string {
	data, err := value.MarshalIndent(r.v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return string(data)
}

// WriteResult is the output of set and delete.
type WriteResult struct {
	Op   string `json:"op" yaml:"op"`
	Path string `json:"path" yaml:"path"`
}

func (r WriteResult) String() string {
	return fmt.Sprintf("%s %s", r.Op, r.Path)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a path",
		Long: `Print the value stored at a path.

A path is either slash-separated ("users/alice/score") or a JSON array of
segments ('["users","alice/bob"]'). Missing paths print null.

Examples:
  chloe get pings
  chloe get '["users","alice"]' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePathArg(args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			return sess.out.Success(newValueResult(p, sess.store.Get(p)))
		},
	}
}

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Raw   bool
	Merge bool
	Patch bool
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <path> <json>",
		Short: "Write a JSON value at a path",
		Long: `Write a value at a path, creating intermediate objects as needed.

The value is parsed as JSON unless --raw is given. Setting null deletes the
key. Writing through an existing non-object fails and changes nothing.

With --merge the argument is an RFC 7386 merge patch applied to the current
value. With --patch it is an RFC 6902 JSON Patch operation list.

Examples:
  chloe set pings 5
  chloe set users/alice '{"score": 10}'
  chloe set greeting --raw 'hello there'
  chloe set users/alice --merge '{"score": 11, "nick": null}'
  chloe set users/alice --patch '[{"op":"add","path":"/tags","value":["x"]}]'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePathArg(args[0])
			if err != nil {
				return err
			}

			var v value.Value = value.String(args[1])
			if !opts.Raw {
				v, err = value.Unmarshal([]byte(args[1]))
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid JSON value (use --raw for plain strings)", err)
				}
			}

			switch {
			case opts.Merge:
				return patchValue(opts.RootOptions, cmd, "merge", p, func(cur value.Value) (value.Value, error) {
					return value.MergePatch(cur, v)
				})
			case opts.Patch:
				return patchValue(opts.RootOptions, cmd, "patch", p, func(cur value.Value) (value.Value, error) {
					return value.ApplyPatch(cur, v)
				})
			}
			return writeValue(opts.RootOptions, cmd, "set", p, v)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "store the argument as a string instead of parsing JSON")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "apply the argument as a JSON merge patch")
	cmd.Flags().BoolVar(&opts.Patch, "patch", false, "apply the argument as a JSON Patch operation list")
	cmd.MarkFlagsMutuallyExclusive("raw", "merge", "patch")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Remove the key at a path",
		Long: `Remove the key at a path. Deleting a missing key is not an error.

Example:
  chloe delete users/bob`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePathArg(args[0])
			if err != nil {
				return err
			}
			return writeValue(rootOpts, cmd, "delete", p, value.Null{})
		},
	}
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "dump",
		Short:         "Print the whole document",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			return sess.out.Success(newValueResult(nil, sess.store.Root()))
		},
	}
}

func writeValue(opts *RootOptions, cmd *cobra.Command, op string, p store.Path, v value.Value) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.store.Set(p, v); err != nil {
		return writeError(op, err)
	}
	sess.logger.Debug("value written", "op", op, "path", p.String())
	return sess.out.Success(WriteResult{Op: op, Path: p.String()})
}

// patchValue rewrites the value at p with fn applied to its current value.
func patchValue(opts *RootOptions, cmd *cobra.Command, op string, p store.Path, fn func(value.Value) (value.Value, error)) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	next, err := fn(sess.store.Get(p))
	if err != nil {
		return WrapExitError(ExitCommandError, op+" failed", err)
	}
	if err := sess.store.Set(p, next); err != nil {
		return writeError(op, err)
	}
	sess.logger.Debug("value patched", "op", op, "path", p.String())
	return sess.out.Success(WriteResult{Op: op, Path: p.String()})
}

// writeError maps a failed Set to an exit code. Input the store refuses to
// encode or address is a command error; type conflicts and I/O are failures.
func writeError(op string, err error) error {
	code := ExitFailure
	var se *store.Error
	if errors.As(err, &se) && (se.Code == store.ErrCodeInvalidValue || se.Code == store.ErrCodeInvalidPath) {
		code = ExitCommandError
	}
	return WrapExitError(code, op+" failed", err)
}

func parsePathArg(arg string) (store.Path, error) {
	p, err := store.ParsePath(arg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid path", err)
	}
	return p, nil
}
