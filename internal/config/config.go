// Package config loads the bot configuration.
//
// Config files are CUE by default. Files ending in .json, .jsonc or .json5
// (comments and trailing commas allowed), .toml, or .yaml are converted to
// JSON first and then checked against the same CUE schema; those formats also
// expand ${VAR} references from the environment. Every field has a default,
// so an empty file is a valid config. Unknown fields are rejected.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded configuration.
type Config struct {
	Prefix   string   `json:"prefix"`
	Database Database `json:"database"`
	Bot      Bot      `json:"bot"`
	Logging  Logging  `json:"logging"`
}

// Database configures the document store.
type Database struct {
	Dir             string `json:"dir"`
	DiscardTornTail bool   `json:"discard_torn_tail"`
}

// Bot configures the command layer.
type Bot struct {
	Name       string   `json:"name"`
	Invite     string   `json:"invite,omitempty"`
	EmbedColor int      `json:"embed_color"`
	BadColor   int      `json:"bad_color"`
	Categories []string `json:"categories"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Error codes for config loading.
const (
	ErrCodeNotFound = "CONFIG_NOT_FOUND"
	ErrCodeRead     = "CONFIG_READ"
	ErrCodeParse    = "CONFIG_PARSE"
	ErrCodeInvalid  = "CONFIG_INVALID"
)

// Error is returned by Load.
type Error struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExamplePath returns the example config path for path: "config.cue" becomes
// "config.def.cue".
func ExamplePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".def" + ext
}

// Default returns the configuration with every field at its default.
func Default() *Config {
	cfg, err := decode(nil, "")
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("config: embedded schema has no valid default: %v", err))
	}
	return cfg
}

// Load reads and validates the config file at path.
//
// If path does not exist but its example file (see ExamplePath) does, the
// example is copied into place first so there is something to edit.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = bootstrap(path)
	}
	if err != nil {
		return nil, err
	}
	return decode(data, path)
}

func bootstrap(path string) ([]byte, error) {
	example := ExamplePath(path)
	data, err := os.ReadFile(example)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("config file not found and no example at %s", example)}
	}
	if err != nil {
		return nil, &Error{Code: ErrCodeRead, Path: example, Message: "read example config", Err: err}
	}

	slog.Info("config file missing, copying example", "config", path, "example", example)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &Error{Code: ErrCodeRead, Path: path, Message: "copy example config", Err: err}
	}
	slog.Info("example config copied, edit it as you like", "config", path)
	return data, nil
}

// decode unifies data with #Config and decodes the result. nil data yields
// the defaults.
func decode(data []byte, path string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &Error{Code: ErrCodeParse, Path: "schema.cue", Message: "compile schema", Err: err}
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if data != nil {
		src, err := toCUESource(SyntaxFromPath(path), data)
		if err != nil {
			return nil, &Error{Code: ErrCodeParse, Path: path, Message: "parse config", Err: err}
		}
		user := ctx.CompileBytes(src, cue.Filename(path))
		if err := user.Err(); err != nil {
			return nil, &Error{Code: ErrCodeParse, Path: path, Message: "parse config", Err: err}
		}
		v = v.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Message: "validate config", Err: err}
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Message: "decode config", Err: err}
	}
	return &cfg, nil
}

// SlogLevel maps Logging.Level to a slog level.
func (l Logging) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
