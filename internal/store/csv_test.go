package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := `property_name,category_name,child_name,date_string,value,unit_name
Generation,Wind Onshore,FR01_Wind,2050,100,GWh
Installed Capacity,Wind Onshore,FR01_Wind,2050,50,MW
`
	table, err := ParseCSV("systemgenerators.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "systemgenerators.csv", table.Name)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{
		Property: "Generation",
		Category: "Wind Onshore",
		Child:    "FR01_Wind",
		Date:     "2050",
		Value:    "100",
		Unit:     "GWh",
	}, table.Rows[0])
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	input := `value,property_name,unit_name,child_name
7.5,Flow,GWh,FR-BE
`
	table, err := ParseCSV("networks.csv", strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Flow", table.Rows[0].Property)
	assert.Equal(t, "7.5", table.Rows[0].Value)
	assert.Equal(t, "", table.Rows[0].Date)
}

func TestParseCSVShortRecordsPadded(t *testing.T) {
	input := `property_name,category_name,child_name,date_string,value,unit_name
Generation,Wind
`
	table, err := ParseCSV("t.csv", strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Generation", table.Rows[0].Property)
	assert.Equal(t, "", table.Rows[0].Value)
}

func TestParseCSVEmptyFile(t *testing.T) {
	table, err := ParseCSV("empty.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}
