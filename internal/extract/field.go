package extract

import (
	"strings"

	"txflow/internal/catalog"
	"txflow/internal/model"
)

// ResolveField returns the value a field spec points at on an event. The
// display value of an argument wins over its raw value. json_key specs
// only reach inputs.
func ResolveField(ev model.Event, spec catalog.FieldSpec) (string, bool) {
	switch spec.Field {
	case catalog.FieldAddress:
		if spec.Kind == catalog.SourceJSONKey || ev.Address == "" {
			return "", false
		}
		return ev.Address, true
	case catalog.FieldInputs:
		arg, ok := findInput(ev.Inputs, spec.Params, false)
		if !ok {
			return "", false
		}
		value := arg.AddressValue()
		return value.String(), value.IsSet()
	default:
		return "", false
	}
}

// findInput returns the first argument, in input order, whose name is a candidate.
func findInput(inputs []model.InputArgument, params []string, foldCase bool) (model.InputArgument, bool) {
	for _, arg := range inputs {
		if catalog.NameIn(arg.Name, params, foldCase) {
			return arg, true
		}
	}
	return model.InputArgument{}, false
}

// firstHexArgument returns the first argument value that looks like an address.
func firstHexArgument(inputs []model.InputArgument, allowContractHint bool) (string, bool) {
	for _, arg := range inputs {
		value := arg.AddressValue().String()
		if looksLikeAddress(value) {
			return value, true
		}
		if allowContractHint && strings.Contains(strings.ToLower(value), "contract") {
			return value, true
		}
	}
	return "", false
}

func hexArguments(inputs []model.InputArgument) []string {
	var out []string
	for _, arg := range inputs {
		value := arg.AddressValue().String()
		if looksLikeAddress(value) {
			out = append(out, value)
		}
	}
	return out
}

// looksLikeAddress is a prefix check only; long hashes pass as well.
func looksLikeAddress(value string) bool {
	return strings.HasPrefix(value, "0x")
}
