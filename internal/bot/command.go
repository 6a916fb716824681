package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/message"

	"github.com/roach88/chloe/internal/config"
	"github.com/roach88/chloe/internal/store"
	"github.com/roach88/chloe/internal/value"
)

// OptionKind is the type of a command option.
type OptionKind string

const (
	OptionString  OptionKind = "string"
	OptionInteger OptionKind = "integer"
	OptionBoolean OptionKind = "boolean"
	OptionUser    OptionKind = "user"
)

// Option describes one command option.
type Option struct {
	Name        string
	Description string
	Kind        OptionKind
	Required    bool
}

// Placeholder renders the option as <name> when required or [name] otherwise.
func (o Option) Placeholder() string {
	if o.Required {
		return "<" + o.Name + ">"
	}
	return "[" + o.Name + "]"
}

// RunFunc executes a command.
type RunFunc func(ctx context.Context, p *Params) (*Reply, error)

// Command is a registered command. Names[0] is the primary name; the rest
// are aliases.
type Command struct {
	Names       []string
	Description string
	Category    string
	Options     []Option
	Run         RunFunc
}

// Name returns the primary name.
func (c *Command) Name() string {
	return c.Names[0]
}

// Signature renders the option placeholders, e.g. "<text> [count]".
func (c *Command) Signature() string {
	parts := make([]string, len(c.Options))
	for i, o := range c.Options {
		parts[i] = o.Placeholder()
	}
	return strings.Join(parts, " ")
}

// Usage renders prefix, name and signature, e.g. "!say <text>".
func (c *Command) Usage(prefix string) string {
	sig := c.Signature()
	if sig == "" {
		return prefix + c.Name()
	}
	return prefix + c.Name() + " " + sig
}

// Params is what a command receives.
type Params struct {
	// Args is the message split on spaces, command name included.
	Args []string

	// ArgString is everything after the command name.
	ArgString string

	// Prefix is the prefix the command was called with ("/" for Invoke).
	Prefix string

	// Author is the display name of the caller.
	Author string

	// Options holds parsed option values by name. Missing optional options
	// are absent.
	Options map[string]value.Value

	// InvocationID identifies this dispatch in logs.
	InvocationID string

	DB      *store.Handle
	Config  *config.Config
	Manager *Manager
	Logger  *slog.Logger
	Printer *message.Printer
}

// String returns a string option, or "" and false if it is absent.
func (p *Params) String(name string) (string, bool) {
	v, ok := p.Options[name]
	if !ok {
		return "", false
	}
	return value.AsString(v)
}

// Int returns an integer option.
func (p *Params) Int(name string) (int64, bool) {
	v, ok := p.Options[name]
	if !ok {
		return 0, false
	}
	return value.AsInt(v)
}

// Bool returns a boolean option.
func (p *Params) Bool(name string) (bool, bool) {
	b, ok := p.Options[name].(value.Bool)
	return bool(b), ok
}

func validateCommand(c *Command) error {
	if len(c.Names) == 0 {
		return fmt.Errorf("command has no names")
	}
	if c.Run == nil {
		return fmt.Errorf("command %q has no run function", c.Names[0])
	}
	seen := make(map[string]bool, len(c.Options))
	for i, o := range c.Options {
		if o.Name == "" {
			return fmt.Errorf("command %q: option %d has no name", c.Names[0], i)
		}
		if seen[o.Name] {
			return fmt.Errorf("command %q: duplicate option %q", c.Names[0], o.Name)
		}
		seen[o.Name] = true
		switch o.Kind {
		case OptionString, OptionInteger, OptionBoolean, OptionUser:
		default:
			return fmt.Errorf("command %q: option %q has unknown kind %q", c.Names[0], o.Name, o.Kind)
		}
	}
	return nil
}
