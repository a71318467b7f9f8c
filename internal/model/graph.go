package model

const (
	NodeTypeExternal = "external"
	NodeTypeAddress  = "address"
)

// Node is one participant of the value-flow graph.
type Node struct {
	ID     string  `json:"id"`
	Size   float64 `json:"size"`
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Volume float64 `json:"volume"`
}

// Edge is one retained flow realized between two nodes.
type Edge struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Event      string  `json:"event"`
	Token      string  `json:"token"`
	Amount     float64 `json:"amount"`
	Title      string  `json:"title"`
	Weight     float64 `json:"weight"`
	EventIndex int     `json:"event_index"`
}

// Graph is the assembled value-flow graph of one transaction.
type Graph struct {
	TransactionHash string `json:"transactionHash,omitempty"`
	Nodes           []Node `json:"nodes"`
	Edges           []Edge `json:"edges"`
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Nodes) == 0
}
