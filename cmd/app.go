package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gridvolt/nfg-cli/internal/catalog"
	"github.com/gridvolt/nfg-cli/internal/equation"
	"github.com/gridvolt/nfg-cli/internal/knowledge"
	"github.com/gridvolt/nfg-cli/internal/monitoring"
	"github.com/gridvolt/nfg-cli/internal/pipeline"
	"github.com/gridvolt/nfg-cli/internal/store"
	"github.com/gridvolt/nfg-cli/pkg/anthropic"
)

// appEnv bundles the wired components shared by the commands.
type appEnv struct {
	Store        store.Store
	Orchestrator *pipeline.Orchestrator
	Metrics      *monitoring.Collector
}

// initApp loads the data store and wires the query pipeline from config.
func initApp(ctx context.Context) (*appEnv, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DataDir, cfg.Store.SQLitePath)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: open store")
	}

	metrics := monitoring.NewCollector()
	source := knowledge.NewLLM(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic, cfg.Pipeline, metrics)
	cat := catalog.New(source, metrics)
	reg := equation.New(source, metrics, cfg.Pipeline.UnitSanityLen)

	return &appEnv{
		Store:        st,
		Orchestrator: pipeline.New(source, st, cat, reg, metrics),
		Metrics:      metrics,
	}, nil
}

func (e *appEnv) Close() {
	_ = e.Store.Close()
}
