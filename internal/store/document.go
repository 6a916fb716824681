package store

import (
	"fmt"

	"github.com/roach88/chloe/internal/value"
)

// Document is the in-memory tree. The root is always an object.
type Document struct {
	root value.Object
}

// NewDocument wraps root. A nil root becomes an empty object.
func NewDocument(root value.Object) *Document {
	if root == nil {
		root = value.Object{}
	}
	return &Document{root: root}
}

// Root returns the live root object. Callers must not mutate it.
func (d *Document) Root() value.Object {
	return d.root
}

// Get resolves p against the document. Any missing key, or any non-object met
// before the final segment, resolves to Null. An empty path returns the root.
// The returned value aliases document storage.
func (d *Document) Get(p Path) value.Value {
	var cur value.Value = d.root
	for _, seg := range p {
		switch node := cur.(type) {
		case value.Object:
			child, ok := node[seg]
			if !ok {
				return value.Null{}
			}
			cur = child
		case value.Null, value.Bool, value.Int, value.Float, value.String, value.Array:
			return value.Null{}
		default:
			panic(fmt.Sprintf("store: unknown value variant %T", cur))
		}
	}
	return cur
}

// apply writes v at p without logging it. Missing intermediate keys are
// created as empty objects. A Null v removes the final key.
//
// On failure the document is unchanged: a conflict can only be found on a key
// that already existed, and once a missing key has been created every deeper
// segment lands in a fresh object.
func (d *Document) apply(p Path, v value.Value) error {
	if err := p.validate(); err != nil {
		return err
	}

	node := d.root
	for i, seg := range p[:len(p)-1] {
		child, ok := node[seg]
		if !ok {
			next := value.Object{}
			node[seg] = next
			node = next
			continue
		}

		switch c := child.(type) {
		case value.Object:
			node = c
		case value.Null, value.Bool, value.Int, value.Float, value.String, value.Array:
			return &Error{
				Code:    ErrCodeTypePath,
				Message: fmt.Sprintf("cannot write through %q: it holds %s, not an object", Path(p[:i+1]), value.KindOf(c)),
				Path:    p,
			}
		default:
			panic(fmt.Sprintf("store: unknown value variant %T", child))
		}
	}

	last := p[len(p)-1]
	if value.IsNull(v) {
		delete(node, last)
		return nil
	}
	node[last] = v
	return nil
}
