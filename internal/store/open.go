package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Open loads every table under dataDir and wraps it in the requested backend.
// driver is "memory" (default) or "sqlite".
func Open(ctx context.Context, driver, dataDir, sqlitePath string) (Store, error) {
	tables, err := LoadDir(ctx, dataDir)
	if err != nil {
		return nil, err
	}

	switch driver {
	case "", "memory":
		return NewMemory(tables), nil
	case "sqlite":
		s, err := NewSQLite(sqlitePath)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		if err := s.LoadTables(ctx, tables); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
