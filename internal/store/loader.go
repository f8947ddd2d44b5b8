package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadDir loads every .csv and .xlsx file in dir, in parallel. A missing
// directory yields an empty table set with a warning so the pipeline can
// still answer from fallback values. A file that fails to parse is logged
// and skipped rather than failing the whole load.
func LoadDir(ctx context.Context, dir string) ([]Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("store: data directory not found, starting with empty table set",
				zap.String("dir", dir))
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: read dir %s", dir)
	}

	var mu sync.Mutex
	var tables []Table

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			loaded, loadErr := loadFile(name, path)
			if loadErr != nil {
				zap.L().Error("store: skipping unreadable table file",
					zap.String("file", name),
					zap.Error(loadErr),
				)
				return nil
			}

			mu.Lock()
			tables = append(tables, loaded...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "store: load dir")
	}

	// Deterministic order regardless of load completion order.
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	for _, t := range tables {
		zap.L().Info("store: loaded table",
			zap.String("table", t.Name),
			zap.Int("rows", len(t.Rows)),
		)
	}
	return tables, nil
}

func loadFile(name, path string) ([]Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "store: open %s", name)
		}
		defer f.Close()

		table, err := ParseCSV(name, f)
		if err != nil {
			return nil, err
		}
		return []Table{table}, nil
	case ".xlsx":
		return ParseXLSX(name, path)
	default:
		return nil, nil
	}
}
