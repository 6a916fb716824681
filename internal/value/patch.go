package value

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
)

// MergePatch applies an RFC 7386 merge patch to doc and returns the result.
// A patch that is not an object replaces doc outright; a null patch yields
// Null. A doc that is not an object is treated as {} when patch is an object.
func MergePatch(doc, patch Value) (Value, error) {
	if _, ok := patch.(Object); !ok {
		if patch == nil {
			return Null{}, nil
		}
		return Clone(patch), nil
	}
	if _, ok := doc.(Object); !ok {
		doc = Object{}
	}
	return throughJSON(doc, patch, func(d, p []byte) ([]byte, error) {
		return jsonpatch.MergePatch(d, p)
	})
}

// ApplyPatch applies an RFC 6902 JSON Patch (an array of operations) to doc.
func ApplyPatch(doc, ops Value) (Value, error) {
	if _, ok := ops.(Array); !ok {
		return nil, fmt.Errorf("json patch must be an array of operations, got %s", KindOf(ops))
	}
	return throughJSON(doc, ops, func(d, p []byte) ([]byte, error) {
		patch, err := jsonpatch.DecodePatch(p)
		if err != nil {
			return nil, err
		}
		return patch.Apply(d)
	})
}

func throughJSON(doc, patch Value, fn func(doc, patch []byte) ([]byte, error)) (Value, error) {
	d, err := Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	p, err := Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	out, err := fn(d, p)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	return Unmarshal(out)
}
