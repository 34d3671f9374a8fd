// Package transformer defines the record-level transform contract used by the
// pipeline stages. Concrete transforms live in the builtin subpackage and in
// domain packages.
package transformer

import "churnetl/internal/records"

// Transformer rewrites a slice of records. Implementations may mutate the
// records in place and may return a shorter slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
