package model

// External is the endpoint used when no counterparty address can be resolved.
const External = "External"

// FlowTuple is one inferred fund movement extracted from an event.
type FlowTuple struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
	Token       string  `json:"token"`
	EventName   string  `json:"event_name"`
	EventIndex  int     `json:"event_index"`
}

// FlowKey identifies a flow tuple for deduplication.
type FlowKey struct {
	Source      string
	Destination string
	EventIndex  int
}

// Key returns the dedup identity of the tuple.
func (f FlowTuple) Key() FlowKey {
	return FlowKey{Source: f.Source, Destination: f.Destination, EventIndex: f.EventIndex}
}
