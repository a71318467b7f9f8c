package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind records which key a field spec was declared with.
type SourceKind int

const (
	SourceEventField SourceKind = iota + 1
	SourceJSONKey
)

func (k SourceKind) String() string {
	switch k {
	case SourceEventField:
		return "event_field"
	case SourceJSONKey:
		return "json_key"
	default:
		return "unknown"
	}
}

// Field is the part of an event a field spec reads from.
type Field string

const (
	FieldAddress Field = "address"
	FieldInputs  Field = "inputs"
)

// FieldSpec locates one value on an event. json_key specs only read inputs.
type FieldSpec struct {
	Kind   SourceKind
	Field  Field
	Params []string
}

// TransferSpec is one src/dst/amount leg of a catalog entry.
type TransferSpec struct {
	Src    FieldSpec
	Dst    FieldSpec
	Amount FieldSpec
}

// EntryKind is the shape an entry was declared with.
type EntryKind int

const (
	EntrySimple EntryKind = iota + 1
	EntryProtocol
	EntryTransfers
)

func (k EntryKind) String() string {
	switch k {
	case EntrySimple:
		return "simple"
	case EntryProtocol:
		return "protocol"
	case EntryTransfers:
		return "transfers"
	default:
		return "unknown"
	}
}

// Protocol groups the legs of a composite entry.
type Protocol struct {
	Name      string
	Transfers []TransferSpec
}

// Entry is one recognized event name (or list of names) and its legs.
type Entry struct {
	Names     []string
	Kind      EntryKind
	Protocols []Protocol
	Transfers []TransferSpec
}

// Legs returns every transfer of the entry in declaration order.
func (e Entry) Legs() []TransferSpec {
	if e.Kind != EntryProtocol {
		return e.Transfers
	}
	var legs []TransferSpec
	for _, p := range e.Protocols {
		legs = append(legs, p.Transfers...)
	}
	return legs
}

// Catalog is one loaded schema document.
type Catalog struct {
	Source  string
	Entries []Entry
}

// Match returns the first entry naming the event.
func (c *Catalog) Match(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	for _, entry := range c.Entries {
		if NameIn(name, entry.Names, false) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Names returns every event name the catalog recognizes.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	var names []string
	for _, entry := range c.Entries {
		names = append(names, entry.Names...)
	}
	return names
}

// Load reads and resolves catalog documents in order.
func Load(paths ...string) ([]*Catalog, error) {
	out := make([]*Catalog, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		c, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Parse resolves a YAML or JSON catalog document.
func Parse(data []byte, source string) (*Catalog, error) {
	var doc rawDocument
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", source, err)
		}
	} else if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catalog %s: %w", source, err)
	}

	c := &Catalog{Source: source, Entries: make([]Entry, 0, len(doc.Events))}
	for i, raw := range doc.Events {
		entry, err := raw.resolve()
		if err != nil {
			return nil, fmt.Errorf("catalog %s entry %d: %w", source, i, err)
		}
		c.Entries = append(c.Entries, entry)
	}
	return c, nil
}

type rawDocument struct {
	Events []rawEntry `yaml:"events" json:"events"`
}

type rawEntry struct {
	Name      nameList      `yaml:"name" json:"name"`
	Src       *rawFieldSpec `yaml:"src" json:"src"`
	Dst       *rawFieldSpec `yaml:"dst" json:"dst"`
	Amount    *rawFieldSpec `yaml:"amount" json:"amount"`
	Protocols []rawProtocol `yaml:"protocols" json:"protocols"`
	Transfers []rawTransfer `yaml:"transfers" json:"transfers"`
}

type rawProtocol struct {
	Name      string        `yaml:"name" json:"name"`
	Transfers []rawTransfer `yaml:"transfers" json:"transfers"`
}

type rawTransfer struct {
	Src    *rawFieldSpec `yaml:"src" json:"src"`
	Dst    *rawFieldSpec `yaml:"dst" json:"dst"`
	Amount *rawFieldSpec `yaml:"amount" json:"amount"`
}

type rawFieldSpec struct {
	EventField string   `yaml:"event_field" json:"event_field"`
	JSONKey    string   `yaml:"json_key" json:"json_key"`
	ParamName  nameList `yaml:"param_name" json:"param_name"`
}

// nameList accepts either a single string or a list of strings.
type nameList []string

func (n *nameList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*n = cleanNames([]string{s})
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*n = cleanNames(items)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

func (n *nameList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = cleanNames([]string{s})
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or list of strings")
	}
	*n = cleanNames(items)
	return nil
}

func cleanNames(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (r rawEntry) resolve() (Entry, error) {
	if len(r.Name) == 0 {
		return Entry{}, fmt.Errorf("missing name")
	}
	entry := Entry{Names: r.Name}

	switch {
	case r.Src != nil || r.Dst != nil || r.Amount != nil:
		leg, err := rawTransfer{Src: r.Src, Dst: r.Dst, Amount: r.Amount}.resolve()
		if err != nil {
			return Entry{}, fmt.Errorf("%s: %w", r.Name[0], err)
		}
		entry.Kind = EntrySimple
		entry.Transfers = []TransferSpec{leg}
	case len(r.Protocols) > 0:
		entry.Kind = EntryProtocol
		for pi, rp := range r.Protocols {
			p := Protocol{Name: rp.Name}
			for ti, rt := range rp.Transfers {
				leg, err := rt.resolve()
				if err != nil {
					return Entry{}, fmt.Errorf("%s protocol %d transfer %d: %w", r.Name[0], pi, ti, err)
				}
				p.Transfers = append(p.Transfers, leg)
			}
			entry.Protocols = append(entry.Protocols, p)
		}
	case len(r.Transfers) > 0:
		entry.Kind = EntryTransfers
		for ti, rt := range r.Transfers {
			leg, err := rt.resolve()
			if err != nil {
				return Entry{}, fmt.Errorf("%s transfer %d: %w", r.Name[0], ti, err)
			}
			entry.Transfers = append(entry.Transfers, leg)
		}
	default:
		return Entry{}, fmt.Errorf("%s: no src/dst/amount, protocols or transfers", r.Name[0])
	}
	return entry, nil
}

func (r rawTransfer) resolve() (TransferSpec, error) {
	if r.Src == nil || r.Dst == nil || r.Amount == nil {
		return TransferSpec{}, fmt.Errorf("transfer needs src, dst and amount")
	}
	src, err := r.Src.resolve()
	if err != nil {
		return TransferSpec{}, fmt.Errorf("src: %w", err)
	}
	dst, err := r.Dst.resolve()
	if err != nil {
		return TransferSpec{}, fmt.Errorf("dst: %w", err)
	}
	amount, err := r.Amount.resolve()
	if err != nil {
		return TransferSpec{}, fmt.Errorf("amount: %w", err)
	}
	if amount.Field != FieldInputs {
		return TransferSpec{}, fmt.Errorf("amount must read from inputs")
	}
	return TransferSpec{Src: src, Dst: dst, Amount: amount}, nil
}

func (r *rawFieldSpec) resolve() (FieldSpec, error) {
	var spec FieldSpec
	switch {
	case r.EventField != "":
		spec.Kind = SourceEventField
		spec.Field = Field(strings.TrimSpace(r.EventField))
	case r.JSONKey != "":
		spec.Kind = SourceJSONKey
		spec.Field = Field(strings.TrimSpace(r.JSONKey))
	default:
		return FieldSpec{}, fmt.Errorf("field spec needs event_field or json_key")
	}

	switch spec.Field {
	case FieldAddress:
		if spec.Kind == SourceJSONKey {
			return FieldSpec{}, fmt.Errorf("json_key only reads inputs; use event_field for address")
		}
	case FieldInputs:
		if len(r.ParamName) == 0 {
			return FieldSpec{}, fmt.Errorf("inputs field spec needs param_name")
		}
		spec.Params = r.ParamName
	default:
		return FieldSpec{}, fmt.Errorf("unsupported field %q", spec.Field)
	}
	return spec, nil
}
