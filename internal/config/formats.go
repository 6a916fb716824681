package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Syntax is a config file syntax, chosen by file extension.
type Syntax string

const (
	SyntaxCUE  Syntax = "cue"
	SyntaxJSON Syntax = "json"
	SyntaxTOML Syntax = "toml"
	SyntaxYAML Syntax = "yaml"
)

// SyntaxFromPath picks the syntax for path. ".json", ".jsonc" and ".json5"
// files may carry comments and trailing commas. Unknown extensions are CUE.
func SyntaxFromPath(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".json5":
		return SyntaxJSON
	case ".toml":
		return SyntaxTOML
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxCUE
	}
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the value of the environment variable.
// Unset variables expand to "".
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}

// toCUESource converts data into something CompileBytes accepts. CUE is
// passed through untouched; the other syntaxes get ${VAR} expansion and are
// normalized to plain JSON, which is valid CUE.
func toCUESource(syntax Syntax, data []byte) ([]byte, error) {
	if syntax == SyntaxCUE {
		return data, nil
	}
	text := expandEnvVars(string(data))

	switch syntax {
	case SyntaxJSON:
		return jsonc.ToJSON([]byte(text)), nil
	case SyntaxTOML:
		var m map[string]any
		if _, err := toml.Decode(text, &m); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
		return json.Marshal(m)
	case SyntaxYAML:
		var m map[string]any
		if err := yaml.Unmarshal([]byte(text), &m); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		if m == nil {
			m = map[string]any{}
		}
		return json.Marshal(m)
	default:
		return nil, fmt.Errorf("unknown config syntax %q", syntax)
	}
}
