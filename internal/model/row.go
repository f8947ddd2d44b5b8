// Package model defines the shared data types for the analytics engine:
// table rows, parsed intents, equations, citations, and the response shape.
package model

import "strconv"

// DataRow is one numeric observation from a loaded table. Value has already
// passed numeric coercion; rows whose raw value cannot be coerced never reach
// a DataRow.
type DataRow struct {
	SourceTable string  `json:"source"`
	Property    string  `json:"property"`
	Category    string  `json:"tech,omitempty"`
	Child       string  `json:"facility,omitempty"`
	Date        string  `json:"year,omitempty"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
}

// Filters narrows a table query. Empty fields are not applied.
//
// Country matches rows whose child name starts with the 2-letter code
// (facility ids carry a country prefix). Tech is a case-insensitive substring
// match against the category and child names; TechPatterns, when set, widens
// that to any of the listed label variants (raw sources label the same
// technology "Solar", "PV", "photovoltaic"). Year matches the date column
// whether the table stores it as "2050" or 2050.
type Filters struct {
	Tech         string   `json:"tech,omitempty"`
	TechPatterns []string `json:"-"`
	Country      string   `json:"country,omitempty"`
	Year         string   `json:"year,omitempty"`
}

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return f.Tech == "" && f.Country == "" && f.Year == ""
}

// TechAlternatives returns the label variants the tech filter should match:
// TechPatterns when populated, else the canonical name itself, else nothing.
func (f Filters) TechAlternatives() []string {
	if len(f.TechPatterns) > 0 {
		return f.TechPatterns
	}
	if f.Tech != "" {
		return []string{f.Tech}
	}
	return nil
}

// YearMatches reports whether a date cell matches the year filter, tolerating
// integer and string representations of the same year.
func (f Filters) YearMatches(date string) bool {
	if f.Year == "" {
		return true
	}
	if date == f.Year {
		return true
	}
	want, err1 := strconv.Atoi(f.Year)
	got, err2 := strconv.Atoi(date)
	return err1 == nil && err2 == nil && want == got
}
