package catalog

import "strings"

// Fallback decides what an endpoint becomes when none of its candidates resolve.
type Fallback int

const (
	// FallbackDrop discards the event.
	FallbackDrop Fallback = iota
	// FallbackExternal uses the External sentinel.
	FallbackExternal
	// FallbackContract uses the emitting contract, dropping the event when it has none.
	FallbackContract
	// FallbackContractOrExternal uses the emitting contract, else External.
	FallbackContractOrExternal
)

func (f Fallback) String() string {
	switch f {
	case FallbackDrop:
		return "drop"
	case FallbackExternal:
		return "external"
	case FallbackContract:
		return "contract"
	case FallbackContractOrExternal:
		return "contract_or_external"
	default:
		return "unknown"
	}
}

// Endpoint describes how one side of a flow is located on an event.
type Endpoint struct {
	// Params are candidate input names, matched in input order.
	Params []string
	// FoldCase matches Params case-insensitively.
	FoldCase bool
	// Contract makes the emitting contract the primary value.
	Contract bool
	// SameAsSource mirrors the resolved source (self-loop).
	SameAsSource bool
	// ScanHex falls back to the first address-like argument value.
	ScanHex  bool
	Fallback Fallback
}

// AmountSpec describes how the amount of a flow is located.
type AmountSpec struct {
	Params   []string
	FoldCase bool
	// FormattedOnly ignores rawValue and takes the first candidate whose
	// formattedValue parses.
	FormattedOnly bool
}

// MatchMode controls how a rule's names are compared with an event name.
type MatchMode int

const (
	MatchExact MatchMode = iota
	// MatchContains matches when the event name contains the rule name.
	MatchContains
)

// Rule is one per-event-type extraction policy of the built-in table.
type Rule struct {
	Names       []string
	Match       MatchMode
	Source      Endpoint
	Destination Endpoint
	Amount      AmountSpec
}

// Matches reports whether the rule applies to an event name.
func (r Rule) Matches(name string) bool {
	for _, n := range r.Names {
		switch r.Match {
		case MatchContains:
			if strings.Contains(name, n) {
				return true
			}
		default:
			if name == n {
				return true
			}
		}
	}
	return false
}

// Label returns the rule's first name.
func (r Rule) Label() string {
	if len(r.Names) == 0 {
		return ""
	}
	return r.Names[0]
}

// NameIn reports whether name is one of candidates.
func NameIn(name string, candidates []string, foldCase bool) bool {
	for _, c := range candidates {
		if foldCase {
			if strings.EqualFold(name, c) {
				return true
			}
			continue
		}
		if name == c {
			return true
		}
	}
	return false
}
