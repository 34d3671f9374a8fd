// Package parser defines the contract shared by input format readers.
package parser

import (
	"io"

	"churnetl/internal/records"
)

// Parser turns an input stream into a table of records.
type Parser interface {
	Parse(r io.Reader) (*records.Table, error)
}
