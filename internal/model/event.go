package model

import "encoding/json"

// TxDocument is one decoded transaction: its event log plus optional metadata.
type TxDocument struct {
	TransactionHash string  `json:"transactionHash,omitempty"`
	Timestamp       Value   `json:"timestamp,omitempty"`
	Events          []Event `json:"events"`
}

// Event is one decoded log entry.
type Event struct {
	Name       string          `json:"name,omitempty"`
	Address    string          `json:"address,omitempty"`
	EventIndex *int            `json:"eventIndex,omitempty"`
	Inputs     []InputArgument `json:"inputs"`

	// InputsMissing is set when a decoded document had no inputs key.
	InputsMissing bool `json:"-"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var aux struct {
		plain
		Inputs *[]InputArgument `json:"inputs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Event(aux.plain)
	if aux.Inputs == nil {
		e.InputsMissing = true
		return nil
	}
	e.Inputs = *aux.Inputs
	return nil
}

// InputArgument is one named argument of an event.
type InputArgument struct {
	Name           string `json:"name"`
	Type           string `json:"type,omitempty"`
	RawValue       Value  `json:"rawValue,omitempty"`
	DisplayValue   Value  `json:"displayValue,omitempty"`
	FormattedValue Value  `json:"formattedValue,omitempty"`
	Symbol         string `json:"symbol,omitempty"`
}

// Index returns the event's ordinal, falling back to its position in the log.
func (e Event) Index(position int) int {
	if e.EventIndex != nil {
		return *e.EventIndex
	}
	return position
}

// AddressValue returns the display form of an address-like argument.
func (a InputArgument) AddressValue() Value {
	return FirstSet(a.DisplayValue, a.RawValue)
}
