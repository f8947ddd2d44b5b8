package store

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gridvolt/nfg-cli/internal/model"
)

// MemoryStore keeps every loaded table in RAM. It is the default backend and
// is safe for concurrent reads; tables never change after construction.
type MemoryStore struct {
	tables []Table
}

// NewMemory builds a MemoryStore over the given tables.
func NewMemory(tables []Table) *MemoryStore {
	return &MemoryStore{tables: tables}
}

func (s *MemoryStore) Query(_ context.Context, filters model.Filters, properties []string) ([]model.DataRow, error) {
	var out []model.DataRow
	for _, table := range s.tables {
		for _, row := range table.Rows {
			if !rowMatches(row, filters, properties) {
				continue
			}
			value, ok := coerceValue(row.Value)
			if !ok {
				zap.L().Warn("store: dropping non-numeric value",
					zap.String("table", table.Name),
					zap.String("property", row.Property),
					zap.String("value", row.Value),
				)
				continue
			}
			out = append(out, model.DataRow{
				SourceTable: table.Name,
				Property:    row.Property,
				Category:    row.Category,
				Child:       row.Child,
				Date:        row.Date,
				Value:       value,
				Unit:        row.Unit,
			})
		}
	}
	return out, nil
}

func (s *MemoryStore) ListAvailableProperties(_ context.Context) ([]string, error) {
	return s.uniqueValues(ColProperty), nil
}

func (s *MemoryStore) GetUniqueValues(_ context.Context, column string) ([]string, error) {
	return s.uniqueValues(column), nil
}

func (s *MemoryStore) Tables(_ context.Context) ([]string, error) {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) uniqueValues(column string) []string {
	seen := make(map[string]struct{})
	for _, table := range s.tables {
		for _, row := range table.Rows {
			if v := row.column(column); v != "" {
				seen[v] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// rowMatches applies the property allow-list first, then the country prefix,
// tech substring, and year filters.
func rowMatches(row Row, filters model.Filters, properties []string) bool {
	if len(properties) > 0 {
		found := false
		for _, p := range properties {
			if row.Property == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.Country != "" && !strings.HasPrefix(row.Child, filters.Country) {
		return false
	}

	if alternatives := filters.TechAlternatives(); len(alternatives) > 0 {
		category := strings.ToLower(row.Category)
		child := strings.ToLower(row.Child)
		matched := false
		for _, alt := range alternatives {
			needle := strings.ToLower(alt)
			if strings.Contains(category, needle) || strings.Contains(child, needle) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return filters.YearMatches(row.Date)
}

// coerceValue parses a raw cell into a float64. Empty and null-ish cells fail
// coercion.
func coerceValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") || strings.EqualFold(raw, "nan") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
