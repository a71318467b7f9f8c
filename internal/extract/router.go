package extract

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"txflow/internal/catalog"
	"txflow/internal/model"
)

var (
	// ErrNoName marks an event without a name.
	ErrNoName = errors.New("event has no name")
	// ErrNotTransfer marks an event that is not a fund movement.
	ErrNotTransfer = errors.New("event is not a fund movement")
	// ErrNoInputs marks a fund movement whose document carried no inputs.
	ErrNoInputs = errors.New("event has no inputs")
	// ErrUnresolved marks an event whose rule could not locate both endpoints.
	ErrUnresolved = errors.New("flow endpoint unresolved")
)

// Stats counts per-event outcomes of one extraction pass.
type Stats struct {
	Total     int
	Unnamed   int
	Skipped   int
	Eligible  int
	Extracted int
	Dropped   int
	Tuples    int
}

// Router classifies events and dispatches them to the built-in rule table,
// then to the loaded catalogs, then to the generic address heuristic.
type Router struct {
	rules      []catalog.Rule
	catalogs   []*catalog.Catalog
	allow      map[string]struct{}
	substrings []string
	known      map[string]struct{}
	logger     *zap.Logger
}

func NewRouter(catalogs []*catalog.Catalog, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		rules:      catalog.BuiltinRules(),
		allow:      make(map[string]struct{}),
		substrings: catalog.FundTransferSubstrings(),
		known:      make(map[string]struct{}),
		logger:     logger,
	}
	for _, name := range catalog.FundTransferEvents() {
		r.allow[name] = struct{}{}
	}
	for _, c := range catalogs {
		if c == nil {
			continue
		}
		r.catalogs = append(r.catalogs, c)
		for _, name := range c.Names() {
			if rule, ok := r.builtinRule(name); ok {
				logger.Warn("catalog entry shadowed by built-in rule",
					zap.String("catalog", c.Source),
					zap.String("event", name),
					zap.String("rule", rule.Label()),
				)
				continue
			}
			r.known[name] = struct{}{}
		}
	}
	return r
}

// Eligible reports whether an event name is treated as a fund movement.
func (r *Router) Eligible(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := r.allow[name]; ok {
		return true
	}
	for _, s := range r.substrings {
		if strings.Contains(name, s) {
			return true
		}
	}
	if _, ok := r.builtinRule(name); ok {
		return true
	}
	_, ok := r.known[name]
	return ok
}

func (r *Router) builtinRule(name string) (catalog.Rule, bool) {
	for _, rule := range r.rules {
		if rule.Matches(name) {
			return rule, true
		}
	}
	return catalog.Rule{}, false
}

// Extract returns the flow tuples of one event. position is the event's
// place in the log, used when it carries no eventIndex.
func (r *Router) Extract(ev model.Event, position int) ([]model.FlowTuple, error) {
	if ev.Name == "" {
		return nil, ErrNoName
	}
	if !r.Eligible(ev.Name) {
		return nil, ErrNotTransfer
	}
	if ev.InputsMissing {
		return nil, ErrNoInputs
	}
	index := ev.Index(position)

	if rule, ok := r.builtinRule(ev.Name); ok {
		tuple, ok := r.applyRule(ev, index, rule)
		if !ok {
			return nil, fmt.Errorf("%s rule: %w", rule.Label(), ErrUnresolved)
		}
		return []model.FlowTuple{tuple}, nil
	}

	if tuples, matched := r.applyCatalogs(ev, index); matched {
		if len(tuples) == 0 {
			return nil, fmt.Errorf("catalog: %w", ErrUnresolved)
		}
		return tuples, nil
	}

	tuple, ok := r.applyGeneric(ev, index)
	if !ok {
		return nil, fmt.Errorf("generic: %w", ErrUnresolved)
	}
	return []model.FlowTuple{tuple}, nil
}

// ExtractAll runs Extract over a log in ascending effective index order and
// hands every tuple to emit. Per-event failures are counted, never returned.
func (r *Router) ExtractAll(events []model.Event, emit func(model.FlowTuple)) Stats {
	type positioned struct {
		event    model.Event
		position int
	}
	ordered := make([]positioned, len(events))
	for i, ev := range events {
		ordered[i] = positioned{event: ev, position: i}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].event.Index(ordered[i].position) < ordered[j].event.Index(ordered[j].position)
	})

	var stats Stats
	for _, p := range ordered {
		stats.Total++
		tuples, err := r.Extract(p.event, p.position)
		switch {
		case errors.Is(err, ErrNoName):
			stats.Unnamed++
			r.logger.Debug("skip unnamed event", zap.Int("position", p.position))
			continue
		case errors.Is(err, ErrNotTransfer):
			stats.Skipped++
			r.logger.Debug("skip event", zap.String("event", p.event.Name), zap.Int("position", p.position))
			continue
		case err != nil:
			stats.Eligible++
			stats.Dropped++
			r.logger.Debug("drop event",
				zap.String("event", p.event.Name),
				zap.Int("index", p.event.Index(p.position)),
				zap.Error(err),
			)
			continue
		}

		stats.Eligible++
		stats.Extracted++
		for _, t := range tuples {
			stats.Tuples++
			r.logger.Debug("flow",
				zap.String("event", t.EventName),
				zap.Int("index", t.EventIndex),
				zap.String("src", t.Source),
				zap.String("dst", t.Destination),
				zap.Float64("amount", t.Amount),
				zap.String("token", t.Token),
			)
			if emit != nil {
				emit(t)
			}
		}
	}
	return stats
}

func (r *Router) applyRule(ev model.Event, index int, rule catalog.Rule) (model.FlowTuple, bool) {
	src, ok := resolveEndpoint(ev, rule.Source, "")
	if !ok {
		return model.FlowTuple{}, false
	}
	dst, ok := resolveEndpoint(ev, rule.Destination, src)
	if !ok {
		return model.FlowTuple{}, false
	}
	amount, token := resolveAmount(ev.Inputs, rule.Amount)
	return model.FlowTuple{
		Source:      src,
		Destination: dst,
		Amount:      amount,
		Token:       token,
		EventName:   ev.Name,
		EventIndex:  index,
	}, true
}

func resolveEndpoint(ev model.Event, ep catalog.Endpoint, source string) (string, bool) {
	if ep.SameAsSource {
		return source, source != ""
	}
	if ep.Contract && ev.Address != "" {
		return ev.Address, true
	}
	if len(ep.Params) > 0 {
		if arg, ok := findInput(ev.Inputs, ep.Params, ep.FoldCase); ok {
			if v := arg.AddressValue(); v.IsSet() {
				return v.String(), true
			}
		}
	}
	if ep.ScanHex {
		if v, ok := firstHexArgument(ev.Inputs, true); ok {
			return v, true
		}
	}

	switch ep.Fallback {
	case catalog.FallbackExternal:
		return model.External, true
	case catalog.FallbackContract:
		return ev.Address, ev.Address != ""
	case catalog.FallbackContractOrExternal:
		if ev.Address != "" {
			return ev.Address, true
		}
		return model.External, true
	default:
		return "", false
	}
}

// applyCatalogs lets every catalog with an entry for the event contribute
// its legs. matched is false when no catalog knows the name.
func (r *Router) applyCatalogs(ev model.Event, index int) (tuples []model.FlowTuple, matched bool) {
	for _, c := range r.catalogs {
		entry, ok := c.Match(ev.Name)
		if !ok {
			continue
		}
		matched = true
		for _, leg := range entry.Legs() {
			tuple, ok := applyLeg(ev, index, leg)
			if !ok {
				r.logger.Debug("catalog leg unresolved",
					zap.String("catalog", c.Source),
					zap.String("event", ev.Name),
					zap.Int("index", index),
				)
				continue
			}
			tuples = append(tuples, tuple)
		}
	}
	return tuples, matched
}

func applyLeg(ev model.Event, index int, leg catalog.TransferSpec) (model.FlowTuple, bool) {
	src, ok := ResolveField(ev, leg.Src)
	if !ok {
		return model.FlowTuple{}, false
	}
	dst, ok := ResolveField(ev, leg.Dst)
	if !ok {
		return model.FlowTuple{}, false
	}
	arg, ok := findInput(ev.Inputs, leg.Amount.Params, false)
	if !ok {
		return model.FlowTuple{}, false
	}
	amount, token, _ := argumentAmount(arg, false)
	return model.FlowTuple{
		Source:      src,
		Destination: dst,
		Amount:      amount,
		Token:       token,
		EventName:   ev.Name,
		EventIndex:  index,
	}, true
}

// applyGeneric treats the first two address-like argument values as the
// endpoints. A single one is paired with External as the source.
func (r *Router) applyGeneric(ev model.Event, index int) (model.FlowTuple, bool) {
	addrs := hexArguments(ev.Inputs)
	var src, dst string
	switch {
	case len(addrs) >= 2:
		src, dst = addrs[0], addrs[1]
	case len(addrs) == 1:
		src, dst = model.External, addrs[0]
	default:
		return model.FlowTuple{}, false
	}
	amount, token := resolveAmount(ev.Inputs, catalog.GenericAmount)
	return model.FlowTuple{
		Source:      src,
		Destination: dst,
		Amount:      amount,
		Token:       token,
		EventName:   ev.Name,
		EventIndex:  index,
	}, true
}
