// Package value provides the tagged-union value type stored by the document
// store and exchanged with its callers.
//
// This package imports nothing internal. Every other package that touches
// stored data goes through it, which keeps the union closed and the wire
// encoding in one place.
//
// Key design constraints:
//   - Value is sealed: only Null, Bool, Int, Float, String, Array and Object implement it
//   - Int and Float together form the number type; decoding prefers Int
//   - Object keys are encoded in RFC 8785 order so encoded bytes are deterministic
//   - Null is a real value (never a nil interface)
package value
