package bot

import (
	"context"
	"strings"

	"github.com/roach88/chloe/internal/store"
	"github.com/roach88/chloe/internal/value"
)

// CategoryMisc is the category of the built-in commands.
const CategoryMisc = "Misc"

// PingsPath is where pong keeps its counter.
var PingsPath = store.Path{"pings"}

// Builtins returns the built-in commands.
func Builtins() []Command {
	return []Command{
		{
			Names:       []string{"ping"},
			Description: "Check if I am online and working",
			Category:    CategoryMisc,
			Run: func(ctx context.Context, p *Params) (*Reply, error) {
				return TextReply("pong"), nil
			},
		},
		{
			Names:       []string{"pong"},
			Description: "Command for testing the database",
			Category:    CategoryMisc,
			Run:         runPong,
		},
		{
			Names:       []string{"help"},
			Description: "Find out what commands I have",
			Category:    CategoryMisc,
			Options: []Option{
				{Name: "category", Kind: OptionString, Description: "Category to list"},
			},
			Run: runHelp,
		},
		{
			Names:       []string{"invite"},
			Description: "Invite me to other servers",
			Category:    CategoryMisc,
			Run: func(ctx context.Context, p *Params) (*Reply, error) {
				if p.Config.Bot.Invite == "" {
					return nil, InternalError(`the entry "bot.invite" doesn't exist in the config`, nil)
				}
				return TextReply("Thank you!\n" + p.Config.Bot.Invite), nil
			},
		},
		{
			Names:       []string{"say"},
			Description: "Make me say stuff",
			Category:    CategoryMisc,
			Options: []Option{
				{Name: "text", Kind: OptionString, Required: true, Description: "Text that I must say"},
			},
			Run: func(ctx context.Context, p *Params) (*Reply, error) {
				text, _ := p.String("text")
				return TextReply(text), nil
			},
		},
		{
			Names:       []string{"error"},
			Description: "Cause an error",
			Category:    CategoryMisc,
			Options: []Option{
				{Name: "text", Kind: OptionString, Required: true, Description: "Error message"},
			},
			Run: func(ctx context.Context, p *Params) (*Reply, error) {
				text, _ := p.String("text")
				return nil, &CommandError{Kind: ErrorUser, Message: text}
			},
		},
		{
			Names:       []string{"love"},
			Description: "Love someone",
			Category:    CategoryMisc,
			Options: []Option{
				{Name: "who", Kind: OptionUser, Required: true, Description: "User you want to love"},
			},
			Run: func(ctx context.Context, p *Params) (*Reply, error) {
				who, _ := p.String("who")
				return TextReply(p.Author + " loves " + who + " :two_hearts:"), nil
			},
		},
	}
}

// runPong increments the pings counter. The read and the write happen under
// one lock acquisition.
func runPong(ctx context.Context, p *Params) (*Reply, error) {
	var count int64
	err := p.DB.With(func(s *store.Store) error {
		n, _ := value.AsInt(s.Get(PingsPath))
		count = n + 1
		return s.Set(PingsPath, value.Int(count))
	})
	if err != nil {
		return nil, InternalError("update pings counter", err)
	}
	p.Logger.Debug("pings counter updated", "pings", count)
	return TextReply(p.Printer.Sprintf("ponged %d times", count)), nil
}

func runHelp(ctx context.Context, p *Params) (*Reply, error) {
	categories := p.Config.Bot.Categories
	color := p.Config.Bot.EmbedColor

	want, ok := p.String("category")
	if !ok {
		fields := make([]Field, len(categories))
		for i, c := range categories {
			fields[i] = Field{Name: c, Value: p.Prefix + "help " + c}
		}
		return &Reply{Embed: &Embed{
			Title:       "Help",
			Description: "Choose a category",
			Color:       color,
			Fields:      fields,
		}}, nil
	}

	var category string
	for _, c := range categories {
		if strings.EqualFold(c, want) {
			category = c
			break
		}
	}
	if category == "" {
		return nil, UserError("Unknown category %q", want)
	}

	var fields []Field
	for _, cmd := range p.Manager.Commands() {
		if cmd.Category != category {
			continue
		}
		desc := cmd.Description
		if desc == "" {
			desc = "."
		}
		fields = append(fields, Field{Name: cmd.Usage(p.Prefix), Value: desc})
	}
	return &Reply{Embed: &Embed{
		Title:       category + " commands",
		Description: "<> = Required field\n[] = Optional field",
		Color:       color,
		Fields:      fields,
	}}, nil
}
