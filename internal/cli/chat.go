package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/chloe/internal/bot"
)

// ChatOptions holds flags for the chat command.
type ChatOptions struct {
	*RootOptions
	Author string
}

// NewChatCommand creates the chat command.
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot on stdin",
		Long: `Read chat messages from stdin, one per line, and print each reply.

Lines without the configured prefix are ignored. Command errors are printed
as replies and do not stop the session. Ends at EOF or on Ctrl-C.

Example:
  chloe chat --author alice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Author, "author", DefaultAuthor, "author name for messages")

	return cmd
}

func runChat(opts *ChatOptions, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	return withManager(opts.RootOptions, cmd, func(sess *session, m *bot.Manager) error {
		go func() {
			select {
			case sig := <-sigChan:
				sess.logger.Info("received signal, ending chat", "signal", sig)
				cancel()
			case <-ctx.Done():
			}
		}()

		lines := make(chan string)
		scanErr := make(chan error, 1)
		go func() {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			defer close(lines)
			defer func() { scanErr <- scanner.Err() }()
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-ctx.Done():
					return
				}
			}
		}()

		sess.logger.Debug("chat started", "prefix", sess.cfg.Prefix, "author", opts.Author)
		// Prompt only when a person is typing.
		prompt := func() {}
		if isTerminal(cmd.InOrStdin()) {
			prompt = func() { fmt.Fprint(cmd.ErrOrStderr(), "> ") }
		}
		prompt()

		processed := 0
		for {
			select {
			case <-ctx.Done():
				sess.logger.Debug("chat ended", "messages", processed)
				return nil
			case line, ok := <-lines:
				if !ok {
					sess.logger.Debug("chat ended", "messages", processed)
					if err := <-scanErr; err != nil {
						return WrapExitError(ExitFailure, "failed to read input", err)
					}
					return nil
				}
				if strings.TrimSpace(line) == "" {
					prompt()
					continue
				}
				reply, err := m.Process(ctx, bot.Message{Author: opts.Author, Content: line})
				if reply != nil {
					processed++
					if err := writeChatReply(sess.out, reply, err); err != nil {
						return err
					}
				}
				prompt()
			}
		}
	})
}

// writeChatReply prints one reply. Command errors are part of the
// conversation, so only output failures are returned.
func writeChatReply(out *OutputFormatter, reply *bot.Reply, err error) error {
	if out.Format == "text" {
		return writeReplyText(out, reply)
	}
	if err != nil {
		ce := bot.AsCommandError(err)
		return out.Error(string(ce.Kind), ce.Error(), reply)
	}
	return out.Success(reply)
}
