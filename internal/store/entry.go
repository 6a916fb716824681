package store

import (
	"fmt"

	"github.com/roach88/chloe/internal/value"
)

// Entry is one logged mutation. A Null Value means "delete the key".
type Entry struct {
	Path  Path
	Value value.Value
}

// EncodeEntry renders e as a single-line `[path, value]` record, without the
// trailing newline.
func EncodeEntry(e Entry) ([]byte, error) {
	if err := e.Path.validate(); err != nil {
		return nil, err
	}
	v := e.Value
	if v == nil {
		v = value.Null{}
	}
	data, err := value.Marshal(value.Array{e.Path.toValue(), v})
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalidValue, Message: "cannot encode value", Path: e.Path, Err: err}
	}
	return data, nil
}

// DecodeEntry parses one WAL record.
func DecodeEntry(line []byte) (Entry, error) {
	v, err := value.Unmarshal(line)
	if err != nil {
		return Entry{}, err
	}
	arr, ok := v.(value.Array)
	if !ok || len(arr) != 2 {
		return Entry{}, fmt.Errorf("record must be a 2-element array")
	}
	p, err := pathFromValue(arr[0])
	if err != nil {
		return Entry{}, err
	}
	return Entry{Path: p, Value: arr[1]}, nil
}
