// Package store holds the tabular data loaded at startup and answers
// filtered queries against it. Tables are read-only once loaded.
package store

import (
	"context"

	"github.com/gridvolt/nfg-cli/internal/model"
)

// Well-known column names shared by all loaded tables.
const (
	ColProperty = "property_name"
	ColCategory = "category_name"
	ColChild    = "child_name"
	ColDate     = "date_string"
	ColValue    = "value"
	ColUnit     = "unit_name"
)

// Store answers filtered queries against every loaded table.
//
// Filter semantics: a country filter matches rows whose child name starts
// with the 2-letter code; a tech filter matches category or child names by
// case-insensitive substring; a year filter tolerates string and integer
// representations. A non-empty properties list restricts matching to those
// property names before the other filters apply. No matches is an empty
// result, not an error.
type Store interface {
	Query(ctx context.Context, filters model.Filters, properties []string) ([]model.DataRow, error)
	ListAvailableProperties(ctx context.Context) ([]string, error)
	GetUniqueValues(ctx context.Context, column string) ([]string, error)
	Tables(ctx context.Context) ([]string, error)
	Close() error
}

// Row is one raw table row prior to numeric coercion. Value stays a string
// until query time so that non-numeric cells can be skipped with a warning
// instead of silently zeroed.
type Row struct {
	Property string
	Category string
	Child    string
	Date     string
	Value    string
	Unit     string
}

// Table is a named collection of raw rows. The name tags matched rows for
// citations.
type Table struct {
	Name string
	Rows []Row
}

// column returns the named cell of a raw row, or "" for unknown columns.
func (r Row) column(name string) string {
	switch name {
	case ColProperty:
		return r.Property
	case ColCategory:
		return r.Category
	case ColChild:
		return r.Child
	case ColDate:
		return r.Date
	case ColValue:
		return r.Value
	case ColUnit:
		return r.Unit
	default:
		return ""
	}
}
