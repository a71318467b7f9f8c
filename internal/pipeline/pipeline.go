package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"

	"txflow/internal/catalog"
	"txflow/internal/extract"
	"txflow/internal/graph"
	"txflow/internal/model"
	"txflow/internal/storage"
)

// Config holds runtime settings for graph builds.
type Config struct {
	Catalogs        []*catalog.Catalog
	KeepZeroAddress bool
	Concurrency     int
}

// Result is the outcome of one transaction document.
type Result struct {
	Name      string
	Graph     *model.Graph
	Flows     []model.FlowTuple
	Stats     extract.Stats
	Pruned    graph.PruneStats
	Malformed int
}

// Pipeline loads documents, extracts flows, assembles graphs and hands them
// to the configured sinks. Each document gets its own assembler.
type Pipeline struct {
	cfg    Config
	router *extract.Router
	sinks  []storage.Storage
	flows  storage.FlowSink
	logger *zap.Logger
}

// New builds a Pipeline. flows may be nil.
func New(cfg Config, sinks []storage.Storage, flows storage.FlowSink, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Pipeline{
		cfg:    cfg,
		router: extract.NewRouter(cfg.Catalogs, logger),
		sinks:  sinks,
		flows:  flows,
		logger: logger,
	}
}

// Build turns one loaded document into a pruned graph.
func (p *Pipeline) Build(name string, doc model.TxDocument) Result {
	assembler := graph.NewAssembler()
	stats := p.router.ExtractAll(doc.Events, func(t model.FlowTuple) {
		if !assembler.Add(t) {
			p.logger.Debug("duplicate flow dropped",
				zap.String("src", t.Source),
				zap.String("dst", t.Destination),
				zap.Int("index", t.EventIndex),
			)
		}
	})

	g := assembler.Graph()
	g.TransactionHash = doc.TransactionHash
	pruned := graph.Prune(g, graph.PruneOptions{KeepZeroAddress: p.cfg.KeepZeroAddress})

	return Result{
		Name:   name,
		Graph:  g,
		Flows:  assembler.Flows(),
		Stats:  stats,
		Pruned: pruned,
	}
}

// RunFile processes one input file. Load failures are returned; a document
// without events yields an empty result.
func (p *Pipeline) RunFile(ctx context.Context, path string) (Result, error) {
	name := DocumentName(path)
	doc, malformed, err := LoadDocument(path)
	if err != nil && !errors.Is(err, ErrNoEvents) {
		return Result{Name: name}, err
	}
	if err != nil {
		p.logger.Warn("input has no events", zap.String("file", path), zap.Error(err))
	}
	if malformed > 0 {
		p.logger.Warn("malformed events skipped", zap.String("file", path), zap.Int("count", malformed))
	}

	result := p.Build(name, doc)
	result.Malformed = malformed

	p.logger.Info("graph built",
		zap.String("file", path),
		zap.String("tx", doc.TransactionHash),
		zap.Int("events", result.Stats.Total),
		zap.Int("eligible", result.Stats.Eligible),
		zap.Int("extracted", result.Stats.Extracted),
		zap.Int("skipped", result.Stats.Skipped+result.Stats.Unnamed),
		zap.Int("dropped", result.Stats.Dropped),
		zap.Int("nodes", len(result.Graph.Nodes)),
		zap.Int("edges", len(result.Graph.Edges)),
	)

	if result.Graph.Empty() {
		p.logger.Warn("empty graph, nothing stored", zap.String("file", path))
		return result, nil
	}
	if err := p.store(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

func (p *Pipeline) store(ctx context.Context, result Result) error {
	if p.flows != nil {
		if err := p.flows.PutFlowBatch(result.Flows); err != nil {
			return fmt.Errorf("write flows: %w", err)
		}
	}
	for _, sink := range p.sinks {
		if err := sink.PutGraph(ctx, result.Name, result.Graph); err != nil {
			return fmt.Errorf("store graph %s: %w", result.Name, err)
		}
	}
	return nil
}

// RunDir processes every *.json document of a directory, at most
// Config.Concurrency at a time. Failed files are logged and counted; the
// returned results are ordered by name.
func (p *Pipeline) RunDir(ctx context.Context, dir string) ([]Result, error) {
	paths, err := ListInputs(dir)
	if err != nil {
		return nil, err
	}

	results := cmap.New[Result]()
	failures := cmap.New[error]()

	semaphore := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		semaphore <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result, err := p.RunFile(ctx, path)
			if err != nil {
				p.logger.Error("file failed", zap.String("file", path), zap.Error(err))
				failures.Set(path, err)
				return
			}
			results.Set(path, result)
		}(path)
	}
	wg.Wait()

	out := make([]Result, 0, results.Count())
	for _, path := range paths {
		if result, ok := results.Get(path); ok {
			out = append(out, result)
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	if n := failures.Count(); n > 0 {
		return out, fmt.Errorf("%d of %d files failed", n, len(paths))
	}
	return out, nil
}

// ListInputs returns the *.json files of dir in lexical order, excluding
// graph outputs.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, storage.GraphFileSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// DocumentName derives the graph name from an input path.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
