package bot

import (
	"fmt"
	"strings"
)

// Reply is what a command sends back: text, an embed, or both.
type Reply struct {
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Embed *Embed `json:"embed,omitempty" yaml:"embed,omitempty"`
}

// Embed is a titled, coloured block with optional fields.
type Embed struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Color       int     `json:"color" yaml:"color"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field is one name/value pair inside an embed.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Inline bool   `json:"inline,omitempty" yaml:"inline,omitempty"`
}

// TextReply returns a plain text reply.
func TextReply(text string) *Reply {
	return &Reply{Text: text}
}

// String renders the reply for a terminal. Embeds are drawn as a block
// prefixed with "|", the colour shown after the title.
func (r *Reply) String() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Text != "" {
		b.WriteString(r.Text)
		b.WriteByte('\n')
	}
	if e := r.Embed; e != nil {
		fmt.Fprintf(&b, "| %s (#%06X)\n", e.Title, e.Color)
		if e.Description != "" {
			for _, line := range strings.Split(e.Description, "\n") {
				writeBar(&b, line)
			}
		}
		for _, f := range e.Fields {
			writeBar(&b, "")
			writeBar(&b, f.Name)
			for _, line := range strings.Split(f.Value, "\n") {
				writeBar(&b, "  "+line)
			}
		}
	}
	return b.String()
}

func writeBar(b *strings.Builder, line string) {
	if line == "" {
		b.WriteString("|\n")
		return
	}
	b.WriteString("| ")
	b.WriteString(line)
	b.WriteByte('\n')
}
