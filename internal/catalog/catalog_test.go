package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlCatalog = `
events:
  - name: Transfer
    src: {event_field: inputs, param_name: from}
    dst: {event_field: inputs, param_name: to}
    amount: {event_field: inputs, param_name: value}
  - name: [Mint, MintCToken]
    protocols:
      - name: compound
        transfers:
          - src: {event_field: address}
            dst: {json_key: inputs, param_name: [minter, to]}
            amount: {json_key: inputs, param_name: mintTokens}
          - src: {json_key: inputs, param_name: minter}
            dst: {event_field: address}
            amount: {json_key: inputs, param_name: mintAmount}
  - name: Deposit
    transfers:
      - src: {event_field: inputs, param_name: user}
        dst: {event_field: inputs, param_name: reserve}
        amount: {event_field: inputs, param_name: amount}
`

const jsonCatalog = `{
	"events": [
		{
			"name": "Swap",
			"src": {"event_field": "inputs", "param_name": ["sender"]},
			"dst": {"event_field": "address"},
			"amount": {"event_field": "inputs", "param_name": "amountIn"}
		}
	]
}`

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(yamlCatalog), "events.yaml")
	require.NoError(t, err)
	require.Len(t, c.Entries, 3)

	transfer := c.Entries[0]
	assert.Equal(t, EntrySimple, transfer.Kind)
	require.Len(t, transfer.Legs(), 1)
	assert.Equal(t, FieldSpec{Kind: SourceEventField, Field: FieldInputs, Params: []string{"from"}}, transfer.Legs()[0].Src)

	mint, ok := c.Match("MintCToken")
	require.True(t, ok)
	assert.Equal(t, EntryProtocol, mint.Kind)
	legs := mint.Legs()
	require.Len(t, legs, 2)
	assert.Equal(t, FieldSpec{Kind: SourceEventField, Field: FieldAddress}, legs[0].Src)
	assert.Equal(t, FieldSpec{Kind: SourceJSONKey, Field: FieldInputs, Params: []string{"minter", "to"}}, legs[0].Dst)

	deposit, ok := c.Match("Deposit")
	require.True(t, ok)
	assert.Equal(t, EntryTransfers, deposit.Kind)

	_, ok = c.Match("Borrow")
	assert.False(t, ok)

	assert.Equal(t, []string{"Transfer", "Mint", "MintCToken", "Deposit"}, c.Names())
}

func TestParseJSON(t *testing.T) {
	c, err := Parse([]byte(jsonCatalog), "events.json")
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	leg := c.Entries[0].Legs()[0]
	assert.Equal(t, []string{"sender"}, leg.Src.Params)
	assert.Equal(t, FieldAddress, leg.Dst.Field)
	assert.Equal(t, []string{"amountIn"}, leg.Amount.Params)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, c.Entries)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", `events: [{src: {event_field: address}, dst: {event_field: address}, amount: {event_field: inputs, param_name: v}}]`},
		{"no shape", `events: [{name: X}]`},
		{"incomplete simple", `events: [{name: X, src: {event_field: address}}]`},
		{"no source kind", `events: [{name: X, src: {param_name: a}, dst: {event_field: address}, amount: {event_field: inputs, param_name: v}}]`},
		{"unknown field", `events: [{name: X, src: {event_field: topics}, dst: {event_field: address}, amount: {event_field: inputs, param_name: v}}]`},
		{"inputs without params", `events: [{name: X, src: {event_field: inputs}, dst: {event_field: address}, amount: {event_field: inputs, param_name: v}}]`},
		{"json_key address", `events: [{name: X, src: {json_key: address}, dst: {event_field: address}, amount: {event_field: inputs, param_name: v}}]`},
		{"amount from address", `events: [{name: X, src: {event_field: address}, dst: {event_field: address}, amount: {event_field: address}}]`},
		{"bad yaml", "events: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bad.yaml")
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "a.yaml")
	jsonPath := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlCatalog), 0o644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonCatalog), 0o644))

	catalogs, err := Load(yamlPath, " ", jsonPath)
	require.NoError(t, err)
	require.Len(t, catalogs, 2)
	assert.Equal(t, yamlPath, catalogs[0].Source)
	assert.Equal(t, jsonPath, catalogs[1].Source)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBuiltinRuleOrder(t *testing.T) {
	rules := BuiltinRules()
	match := func(name string) string {
		for _, r := range rules {
			if r.Matches(name) {
				return r.Label()
			}
		}
		return ""
	}

	assert.Equal(t, "Transfer", match("Transfer"))
	assert.Equal(t, "Transfer", match("TransferBatch"))
	assert.Equal(t, "Mint", match("MintBurnEvent"))
	assert.Equal(t, "Deposit", match("LogDeposit"))
	assert.Equal(t, "Withdrawal", match("LogWithdraw"))
	assert.Equal(t, "TradeExecute", match("ExecuteTrade"))
	assert.Equal(t, "", match("KyberTrade"))
	assert.Equal(t, "", match("Swap"))

	rules[0].Names = nil
	assert.Equal(t, "Transfer", BuiltinRules()[0].Label())
}

func TestNameIn(t *testing.T) {
	assert.True(t, NameIn("from", []string{"src", "from"}, false))
	assert.False(t, NameIn("From", []string{"from"}, false))
	assert.True(t, NameIn("From", []string{"from"}, true))
	assert.False(t, NameIn("x", nil, true))
}
