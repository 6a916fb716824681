package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chloe/internal/bot"
	"github.com/roach88/chloe/internal/store"
)

// DefaultAuthor is the author name used for console messages.
const DefaultAuthor = "console"

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions
	Author string
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one chat message to the bot",
		Long: `Send one chat message to the bot and print its reply.

The message must start with the configured prefix ("!" by default); other
messages are ignored, as in a chat channel.

Exit codes:
  0 - Command succeeded (or message ignored)
  1 - Command ran and failed
  2 - Unknown command or bad options

Examples:
  chloe send '!ping'
  chloe send '!say hello there' --author alice`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(opts.RootOptions, cmd, func(sess *session, m *bot.Manager) error {
				content := strings.Join(args, " ")
				reply, err := m.Process(commandContext(cmd), bot.Message{Author: opts.Author, Content: content})
				if reply == nil && err == nil {
					sess.out.VerboseLog("ignored: message does not start with prefix %q", sess.cfg.Prefix)
					return nil
				}
				return writeReply(sess.out, reply, err)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Author, "author", DefaultAuthor, "author name for the message")

	return cmd
}

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Author  string
	Options []string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <command>",
		Short: "Run a bot command with named options",
		Long: `Run a bot command by name with named options, the way a slash command
arrives. Usage hints in replies use the "/" prefix.

Example:
  chloe invoke say --opt text='hello there'
  chloe invoke love --opt who=bob --author alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			named, err := parseNamedOptions(opts.Options)
			if err != nil {
				return err
			}
			return withManager(opts.RootOptions, cmd, func(sess *session, m *bot.Manager) error {
				reply, err := m.Invoke(commandContext(cmd), opts.Author, args[0], named)
				return writeReply(sess.out, reply, err)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Author, "author", DefaultAuthor, "author name for the invocation")
	cmd.Flags().StringArrayVar(&opts.Options, "opt", nil, "option as name=value (repeatable)")

	return cmd
}

func parseNamedOptions(pairs []string) (map[string]string, error) {
	named := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --opt %q: want name=value", pair))
		}
		named[name] = val
	}
	return named, nil
}

// withManager opens a session, wraps its store in a Handle and builds the
// command manager with the built-in commands.
func withManager(opts *RootOptions, cmd *cobra.Command, fn func(*session, *bot.Manager) error) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	handle := store.NewHandle(sess.store)
	defer func() {
		if err := handle.Close(); err != nil {
			sess.logger.Error("error closing store", "error", err)
		}
	}()

	m, err := bot.New(sess.cfg, handle, bot.Builtins(), bot.WithLogger(sess.logger))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to register commands", err)
	}
	return fn(sess, m)
}

// writeReply prints a reply and maps a command error to an exit code.
func writeReply(out *OutputFormatter, reply *bot.Reply, err error) error {
	if err == nil {
		if out.Format == "text" {
			return writeReplyText(out, reply)
		}
		return out.Success(reply)
	}

	ce := bot.AsCommandError(err)
	if out.Format == "text" {
		if werr := writeReplyText(out, reply); werr != nil {
			return werr
		}
	} else if werr := out.Error(string(ce.Kind), ce.Error(), reply); werr != nil {
		return werr
	}

	code := ExitFailure
	if ce.Kind == bot.ErrorSyntax || ce.Kind == bot.ErrorUnknownCommand {
		code = ExitCommandError
	}
	return WrapExitError(code, "command failed", ce)
}

