package graph

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"txflow/internal/model"
)

const (
	MinNodeSize      = 15
	MaxNodeSize      = 50
	ExternalNodeSize = 60
	volumePerSize    = 1000
)

// Assembler accumulates flow tuples of one transaction into a graph. It is
// owned by a single run and is not safe for concurrent use.
type Assembler struct {
	volume map[string]float64
	seen   map[model.FlowKey]struct{}
	flows  []model.FlowTuple
}

func NewAssembler() *Assembler {
	return &Assembler{
		volume: make(map[string]float64),
		seen:   make(map[model.FlowKey]struct{}),
	}
}

// Add records a tuple and reports whether it was retained. A tuple whose
// (source, destination, event_index) was already seen is dropped. Non-finite
// amounts are recorded as 0.
func (a *Assembler) Add(t model.FlowTuple) bool {
	if t.Source == "" || t.Destination == "" {
		return false
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		t.Amount = 0
	}
	key := t.Key()
	if _, ok := a.seen[key]; ok {
		return false
	}
	a.seen[key] = struct{}{}
	a.flows = append(a.flows, t)
	a.credit(t.Source, t.Amount)
	a.credit(t.Destination, t.Amount)
	return true
}

// credit adds to a node's volume, saturating at math.MaxFloat64.
func (a *Assembler) credit(id string, amount float64) {
	sum := a.volume[id] + amount
	if math.IsInf(sum, 1) {
		sum = math.MaxFloat64
	}
	a.volume[id] = sum
}

// Volume returns the cumulative amount credited to an address.
func (a *Assembler) Volume(id string) float64 {
	return a.volume[id]
}

// Flows returns the retained tuples in insertion order.
func (a *Assembler) Flows() []model.FlowTuple {
	return append([]model.FlowTuple(nil), a.flows...)
}

// Len returns the number of retained tuples.
func (a *Assembler) Len() int {
	return len(a.flows)
}

// Graph builds the node and edge sets. Edges are ordered by event index and
// nodes by first appearance in that edge order.
func (a *Assembler) Graph() *model.Graph {
	flows := a.Flows()
	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].EventIndex < flows[j].EventIndex
	})

	g := &model.Graph{
		Nodes: make([]model.Node, 0, len(a.volume)),
		Edges: make([]model.Edge, 0, len(flows)),
	}
	placed := make(map[string]struct{}, len(a.volume))
	place := func(id string) {
		if _, ok := placed[id]; ok {
			return
		}
		placed[id] = struct{}{}
		g.Nodes = append(g.Nodes, a.node(id))
	}

	for _, f := range flows {
		place(f.Source)
		place(f.Destination)
		g.Edges = append(g.Edges, model.Edge{
			From:       f.Source,
			To:         f.Destination,
			Event:      f.EventName,
			Token:      f.Token,
			Amount:     f.Amount,
			Title:      EdgeTitle(f),
			Weight:     f.Amount,
			EventIndex: f.EventIndex,
		})
	}
	return g
}

func (a *Assembler) node(id string) model.Node {
	volume := a.volume[id]
	if id == model.External {
		return model.Node{
			ID:     id,
			Size:   ExternalNodeSize,
			Title:  model.External,
			Type:   model.NodeTypeExternal,
			Volume: volume,
		}
	}
	return model.Node{
		ID:     id,
		Size:   NodeSize(volume),
		Title:  fmt.Sprintf("Address: %s\nVolume: %.2f", id, volume),
		Type:   model.NodeTypeAddress,
		Volume: volume,
	}
}

// NodeSize maps a volume to a display size in [MinNodeSize, MaxNodeSize].
func NodeSize(volume float64) float64 {
	size := MinNodeSize + volume/volumePerSize
	if size < MinNodeSize {
		return MinNodeSize
	}
	if size > MaxNodeSize {
		return MaxNodeSize
	}
	return size
}

// EdgeTitle renders "event: amount token".
func EdgeTitle(f model.FlowTuple) string {
	amount := strconv.FormatFloat(f.Amount, 'f', -1, 64)
	return strings.TrimSpace(fmt.Sprintf("%s: %s %s", f.EventName, amount, f.Token))
}
