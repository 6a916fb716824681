package store

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/chloe/internal/value"
)

// Path addresses a location in the document, starting at the root object.
type Path []string

// String renders p with "/" separators. Segments containing "/" are not
// escaped; use the JSON array form with ParsePath to address them.
func (p Path) String() string {
	return strings.Join(p, "/")
}

// ParsePath parses either a JSON array of strings (`["a","b"]`) or a
// slash-separated path (`a/b`). Empty paths and empty slash segments are
// rejected.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		v, err := value.Unmarshal([]byte(s))
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalidPath, Message: fmt.Sprintf("invalid path %q", s), Err: err}
		}
		p, err := pathFromValue(v)
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalidPath, Message: fmt.Sprintf("invalid path %q", s), Err: err}
		}
		return p, nil
	}

	if s == "" {
		return nil, &Error{Code: ErrCodeInvalidPath, Message: "path is empty"}
	}
	segments := strings.Split(s, "/")
	for i, seg := range segments {
		if seg == "" {
			return nil, &Error{Code: ErrCodeInvalidPath, Message: fmt.Sprintf("invalid path %q: segment %d is empty", s, i)}
		}
	}
	p := Path(segments)
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p Path) validate() error {
	if len(p) == 0 {
		return &Error{Code: ErrCodeInvalidPath, Message: "path is empty"}
	}
	for i, seg := range p {
		if !utf8.ValidString(seg) {
			return &Error{Code: ErrCodeInvalidPath, Message: fmt.Sprintf("segment %d is not valid UTF-8: %q", i, seg)}
		}
	}
	return nil
}

func (p Path) toValue() value.Array {
	arr := make(value.Array, len(p))
	for i, seg := range p {
		arr[i] = value.String(seg)
	}
	return arr
}

// pathFromValue converts a JSON array of strings into a Path.
func pathFromValue(v value.Value) (Path, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, fmt.Errorf("path must be an array, got %s", value.KindOf(v))
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("path is empty")
	}
	p := make(Path, len(arr))
	for i, elem := range arr {
		seg, ok := elem.(value.String)
		if !ok {
			return nil, fmt.Errorf("path[%d] must be a string, got %s", i, value.KindOf(elem))
		}
		p[i] = string(seg)
	}
	return p, nil
}
