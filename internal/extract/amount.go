package extract

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"txflow/internal/catalog"
	"txflow/internal/model"
)

// NormalizeAmount splits a formatted amount such as "12.5 USDC" into its
// numeric value and unit. Input that does not parse normalizes to (0, "").
func NormalizeAmount(text string) (float64, string) {
	value, token, ok := parseAmount(text)
	if !ok {
		return 0, ""
	}
	return value, token
}

func parseAmount(text string) (float64, string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "", false
	}

	number, token := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		number = text[:i]
		token = strings.TrimSpace(text[i:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, "", false
	}
	return math.Abs(value), token, true
}

// argumentAmount reads an amount from one argument: formattedValue first, then
// rawValue. The token is the argument's symbol, else the unit embedded in the value.
func argumentAmount(arg model.InputArgument, formattedOnly bool) (float64, string, bool) {
	value, unit, ok := parseAmount(arg.FormattedValue.String())
	if !ok && !formattedOnly {
		value, unit, ok = parseAmount(arg.RawValue.String())
	}
	if !ok {
		return 0, arg.Symbol, false
	}
	if arg.Symbol != "" {
		return value, arg.Symbol, true
	}
	return value, unit, true
}

// resolveAmount finds the amount argument for spec. Unparsable amounts become 0.
func resolveAmount(inputs []model.InputArgument, spec catalog.AmountSpec) (float64, string) {
	if !spec.FormattedOnly {
		arg, ok := findInput(inputs, spec.Params, spec.FoldCase)
		if !ok {
			return 0, ""
		}
		value, token, _ := argumentAmount(arg, false)
		return value, token
	}

	for _, arg := range inputs {
		if !catalog.NameIn(arg.Name, spec.Params, spec.FoldCase) {
			continue
		}
		if value, token, ok := argumentAmount(arg, true); ok {
			return value, token
		}
	}
	return 0, ""
}
