package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/chloe/internal/value"
)

// parsePositional maps the text after the command name onto opts in order.
// Words are separated by spaces. The last option takes the rest of the line,
// so "!say hello there" gives text="hello there".
func parsePositional(opts []Option, argString string) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(opts))
	rest := strings.TrimSpace(argString)

	for i, o := range opts {
		var raw string
		if i == len(opts)-1 {
			raw = rest
			rest = ""
		} else {
			raw, rest, _ = strings.Cut(rest, " ")
			rest = strings.TrimLeft(rest, " ")
		}

		if raw == "" {
			if o.Required {
				return nil, SyntaxError(fmt.Sprintf("missing option %q", o.Name))
			}
			continue
		}

		v, err := parseOption(o, raw)
		if err != nil {
			return nil, err
		}
		out[o.Name] = v
	}
	return out, nil
}

// parseNamed validates named options against opts. Unknown names are a
// syntax error.
func parseNamed(opts []Option, named map[string]string) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(opts))
	known := make(map[string]bool, len(opts))

	for _, o := range opts {
		known[o.Name] = true
		raw, ok := named[o.Name]
		if !ok || raw == "" {
			if o.Required {
				return nil, SyntaxError(fmt.Sprintf("missing option %q", o.Name))
			}
			continue
		}
		v, err := parseOption(o, raw)
		if err != nil {
			return nil, err
		}
		out[o.Name] = v
	}

	for name := range named {
		if !known[name] {
			return nil, SyntaxError(fmt.Sprintf("unknown option %q", name))
		}
	}
	return out, nil
}

func parseOption(o Option, raw string) (value.Value, error) {
	switch o.Kind {
	case OptionInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, SyntaxError(fmt.Sprintf("option %q: %q is not an integer", o.Name, raw))
		}
		return value.Int(n), nil
	case OptionBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, SyntaxError(fmt.Sprintf("option %q: %q is not a boolean", o.Name, raw))
		}
		return value.Bool(b), nil
	case OptionString, OptionUser:
		return value.String(raw), nil
	default:
		panic(fmt.Sprintf("unhandled option kind %q", o.Kind))
	}
}
