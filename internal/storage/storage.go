package storage

import (
	"context"

	"txflow/internal/model"
)

// Storage defines a sink for assembled graphs. name identifies the
// transaction, usually its hash or the input file's base name.
type Storage interface {
	PutGraph(ctx context.Context, name string, g *model.Graph) error
}

// FlowSink receives the retained flow tuples of a run.
type FlowSink interface {
	PutFlowBatch(flows []model.FlowTuple) error
}
