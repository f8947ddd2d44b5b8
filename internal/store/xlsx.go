package store

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ParseXLSX reads every sheet of a workbook as its own table. A sheet's first
// row is its header; sheets named "<file>#<sheet>" so citations identify the
// originating sheet. Empty sheets are skipped.
func ParseXLSX(name, path string) ([]Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", name)
	}

	var tables []Table
	for _, sheet := range f.Sheets {
		if len(sheet.Rows) < 2 {
			continue
		}

		idx := headerIndex(rowToStrings(sheet.Rows[0]))
		table := Table{Name: name + "#" + sheet.Name}
		for _, row := range sheet.Rows[1:] {
			table.Rows = append(table.Rows, recordToRow(rowToStrings(row), idx))
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
