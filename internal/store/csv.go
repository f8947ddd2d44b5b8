package store

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseCSV reads one CSV table. The first record is a header; columns are
// located by name, so column order does not matter and unknown columns are
// ignored. Rows shorter than the header are padded with empty cells.
func ParseCSV(name string, r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return Table{Name: name}, nil
	}
	if err != nil {
		return Table{}, eris.Wrapf(err, "csv: read header of %s", name)
	}

	idx := headerIndex(header)

	table := Table{Name: name}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, eris.Wrapf(err, "csv: read row of %s", name)
		}
		table.Rows = append(table.Rows, recordToRow(record, idx))
	}
	return table, nil
}

// headerIndex maps well-known column names to their positions. Header cells
// are matched case-insensitively with surrounding whitespace ignored.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, cell := range header {
		idx[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	return idx
}

func recordToRow(record []string, idx map[string]int) Row {
	cell := func(column string) string {
		i, ok := idx[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return Row{
		Property: cell(ColProperty),
		Category: cell(ColCategory),
		Child:    cell(ColChild),
		Date:     cell(ColDate),
		Value:    cell(ColValue),
		Unit:     cell(ColUnit),
	}
}
