package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"txflow/internal/model"
)

// ErrNoEvents marks a document without a usable events array.
var ErrNoEvents = errors.New("document has no events array")

type rawDocument struct {
	TransactionHash model.Value     `json:"transactionHash"`
	Timestamp       model.Value     `json:"timestamp"`
	Events          json.RawMessage `json:"events"`
}

// LoadDocument reads a decoded transaction file. Elements of events that do
// not decode as an event object are skipped and counted in malformed. A
// document without an events array is returned with an error wrapping
// ErrNoEvents.
func LoadDocument(path string) (doc model.TxDocument, malformed int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TxDocument{}, 0, fmt.Errorf("read input: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument decodes a transaction document from JSON.
func ParseDocument(data []byte) (doc model.TxDocument, malformed int, err error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.TxDocument{}, 0, fmt.Errorf("parse input: %w", err)
	}
	doc = model.TxDocument{
		TransactionHash: raw.TransactionHash.String(),
		Timestamp:       raw.Timestamp,
	}

	events := bytes.TrimSpace(raw.Events)
	if len(events) == 0 || bytes.Equal(events, []byte("null")) {
		return doc, 0, ErrNoEvents
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(events, &elements); err != nil {
		return doc, 0, fmt.Errorf("%w: %v", ErrNoEvents, err)
	}

	doc.Events = make([]model.Event, 0, len(elements))
	for _, element := range elements {
		var ev model.Event
		if err := json.Unmarshal(element, &ev); err != nil {
			malformed++
			continue
		}
		doc.Events = append(doc.Events, ev)
	}
	return doc, malformed, nil
}
