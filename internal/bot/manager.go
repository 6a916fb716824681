package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/chloe/internal/config"
	"github.com/roach88/chloe/internal/store"
	"github.com/roach88/chloe/internal/value"
)

// SlashPrefix is the prefix reported to commands run through Invoke.
const SlashPrefix = "/"

// Message is an incoming chat message.
type Message struct {
	Author  string
	Content string

	// Bot marks messages sent by bots. They are ignored.
	Bot bool
}

// Manager holds the command registry and dispatches to it.
type Manager struct {
	cfg      *config.Config
	db       *store.Handle
	commands []*Command
	byName   map[string]*Command
	logger   *slog.Logger
	printer  *message.Printer
	ids      IDGenerator
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the dispatch logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator sets the invocation ID source. Defaults to UUIDv7Generator.
func WithIDGenerator(ids IDGenerator) ManagerOption {
	return func(m *Manager) {
		m.ids = ids
	}
}

// WithLanguage sets the language used to format numbers in replies.
func WithLanguage(tag language.Tag) ManagerOption {
	return func(m *Manager) {
		m.printer = message.NewPrinter(tag)
	}
}

// New builds a Manager over commands. Names and aliases must be unique.
func New(cfg *config.Config, db *store.Handle, commands []Command, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		cfg:     cfg,
		db:      db,
		byName:  make(map[string]*Command),
		logger:  slog.Default(),
		printer: message.NewPrinter(language.English),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(m)
	}

	for i := range commands {
		c := &commands[i]
		if err := validateCommand(c); err != nil {
			return nil, err
		}
		for _, name := range c.Names {
			key := normalizeName(name)
			if prev, ok := m.byName[key]; ok {
				return nil, fmt.Errorf("command name %q registered by both %q and %q", name, prev.Name(), c.Name())
			}
			m.byName[key] = c
		}
		m.commands = append(m.commands, c)
	}
	return m, nil
}

func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Commands returns the registered commands in registration order.
func (m *Manager) Commands() []*Command {
	return m.commands
}

// Command finds a command by name or alias, or returns nil.
func (m *Manager) Command(name string) *Command {
	return m.byName[normalizeName(name)]
}

// CommandFromMessage resolves the command a message would run, or nil if the
// message lacks the prefix or names no command.
func (m *Manager) CommandFromMessage(content, prefix string) *Command {
	rest, ok := strings.CutPrefix(content, prefix)
	if !ok {
		return nil
	}
	name, _, _ := strings.Cut(rest, " ")
	return m.Command(name)
}

// Process handles a chat message.
//
// Messages from bots or without the configured prefix return (nil, nil).
// Otherwise the reply is always non-nil: on failure it is the rendered error
// and the returned error is a *CommandError.
func (m *Manager) Process(ctx context.Context, msg Message) (*Reply, error) {
	if msg.Bot {
		return nil, nil
	}
	prefix := m.cfg.Prefix
	rest, ok := strings.CutPrefix(msg.Content, prefix)
	if !ok {
		return nil, nil
	}

	args := strings.Split(rest, " ")
	p := m.newParams(prefix, msg.Author)
	p.Args = args
	p.ArgString = strings.Join(args[1:], " ")

	cmd := m.Command(args[0])
	if cmd == nil {
		return m.unknownCommand(p, args[0])
	}

	opts, err := parsePositional(cmd.Options, p.ArgString)
	if err != nil {
		return m.fail(cmd, p, err)
	}
	p.Options = opts
	return m.run(ctx, cmd, p)
}

// Invoke runs a command by name with named options, the way a slash command
// arrives. Return values follow Process.
func (m *Manager) Invoke(ctx context.Context, author, name string, options map[string]string) (*Reply, error) {
	p := m.newParams(SlashPrefix, author)
	p.Args = []string{name}

	cmd := m.Command(name)
	if cmd == nil {
		return m.unknownCommand(p, name)
	}

	opts, err := parseNamed(cmd.Options, options)
	if err != nil {
		return m.fail(cmd, p, err)
	}
	p.Options = opts
	return m.run(ctx, cmd, p)
}

func (m *Manager) newParams(prefix, author string) *Params {
	id := m.ids.Generate()
	return &Params{
		Prefix:       prefix,
		Author:       author,
		Options:      map[string]value.Value{},
		InvocationID: id,
		DB:           m.db,
		Config:       m.cfg,
		Manager:      m,
		Logger:       m.logger.With("invocation", id),
		Printer:      m.printer,
	}
}

func (m *Manager) run(ctx context.Context, cmd *Command, p *Params) (*Reply, error) {
	p.Logger = p.Logger.With("command", cmd.Name())
	p.Logger.Debug("running command", "author", p.Author, "options", len(p.Options))

	reply, err := cmd.Run(ctx, p)
	if err != nil {
		return m.fail(cmd, p, err)
	}
	if reply == nil {
		reply = &Reply{}
	}
	return reply, nil
}

func (m *Manager) unknownCommand(p *Params, name string) (*Reply, error) {
	p.Logger.Debug("unknown command", "name", name)
	return TextReply("Unknown command"), &CommandError{Kind: ErrorUnknownCommand, Message: name}
}

// fail renders err as a reply and logs it.
func (m *Manager) fail(cmd *Command, p *Params, err error) (*Reply, error) {
	ce := AsCommandError(err)

	switch ce.Kind {
	case ErrorSyntax:
		p.Logger.Debug("command syntax error", "command", cmd.Name(), "detail", ce.Detail)
		return m.syntaxReply(cmd, p.Prefix), ce

	case ErrorUser, ErrorUnknown:
		if ce.Detail != "" || ce.Err != nil {
			p.Logger.Error("error processing command", "command", cmd.Name(), "error", ce)
		}
		desc := ce.Message
		if ce.Kind == ErrorUnknown || desc == "" {
			desc = "An error has occurred"
		}
		return &Reply{Embed: &Embed{
			Title:       "Error",
			Description: desc,
			Color:       m.cfg.Bot.BadColor,
		}}, ce

	case ErrorUnknownCommand:
		return TextReply("Unknown command"), ce

	default:
		panic(fmt.Sprintf("unhandled command error kind %q", ce.Kind))
	}
}

func (m *Manager) syntaxReply(cmd *Command, prefix string) *Reply {
	return &Reply{Embed: &Embed{
		Title:       prefix + cmd.Name(),
		Description: cmd.Description,
		Color:       m.cfg.Bot.EmbedColor,
		Fields:      []Field{{Name: "Syntax", Value: cmd.Usage(prefix)}},
	}}
}
