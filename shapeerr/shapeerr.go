// Package shapeerr holds the sentinel errors shared across the shaping
// pipeline, following the teacher's own plain errors.New/fmt.Errorf style
// (no error-wrapping library appears anywhere in the retrieval pack).
package shapeerr

import "errors"

var (
	// ErrNoPrimaryFont is returned when a shaping call is started without a
	// primary font, per spec.md §7's "core refuses to start shaping
	// without a valid primary font" policy.
	ErrNoPrimaryFont = errors.New("shape: no primary font supplied")

	// ErrMalformedTable names a font table that fails coverage/format
	// sanity. No function in this module returns it: font.NewOTAdapter
	// returns the table parser's own error instead.
	ErrMalformedTable = errors.New("shape: malformed font table")

	// ErrCapacityExhausted is returned when the glyph buffer cannot grow
	// to hold a requested operation.
	ErrCapacityExhausted = errors.New("shape: buffer capacity exhausted")
)
