package model

import "strconv"

// Intent is the structured extraction of a natural-language query. Fields are
// empty (or zero for Year) when the parser could not determine them.
// Confidence maps field names to 0.0-1.0 scores.
type Intent struct {
	Metric     string             `json:"metric"`
	Tech       string             `json:"tech"`
	Country    string             `json:"country"`
	Year       int                `json:"year"`
	Fuel       string             `json:"fuel,omitempty"`
	Network    string             `json:"network,omitempty"`
	Operation  string             `json:"operation,omitempty"`
	Confidence map[string]float64 `json:"confidence"`
}

// Filters derives table-query filters from the intent's tech/country/year.
func (i Intent) Filters() Filters {
	f := Filters{
		Tech:    i.Tech,
		Country: i.Country,
	}
	if i.Year != 0 {
		f.Year = strconv.Itoa(i.Year)
	}
	return f
}
