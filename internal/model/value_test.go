package model

import (
	"encoding/json"
	"testing"
)

func TestValueUnmarshal(t *testing.T) {
	var arg InputArgument
	data := `{"name":"value","rawValue":1000000000000000000000,"displayValue":null,"formattedValue":"1000 DAI","symbol":"DAI"}`
	if err := json.Unmarshal([]byte(data), &arg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if arg.RawValue != "1000000000000000000000" {
		t.Fatalf("raw value mismatch: %q", arg.RawValue)
	}
	if arg.DisplayValue.IsSet() {
		t.Fatalf("null display value should be unset")
	}
	if arg.FormattedValue != "1000 DAI" {
		t.Fatalf("formatted value mismatch: %q", arg.FormattedValue)
	}

	var composite struct {
		Flag  Value `json:"flag"`
		Tuple Value `json:"tuple"`
	}
	if err := json.Unmarshal([]byte(`{"flag": true, "tuple": [ "0xA", 1 ]}`), &composite); err != nil {
		t.Fatalf("unmarshal composite: %v", err)
	}
	if composite.Flag != "true" || composite.Tuple != `["0xA",1]` {
		t.Fatalf("composite mismatch: %+v", composite)
	}
}

func TestAddressValuePrefersDisplay(t *testing.T) {
	arg := InputArgument{RawValue: "0xraw", DisplayValue: "0xDisplay"}
	if arg.AddressValue() != "0xDisplay" {
		t.Fatalf("display value not preferred")
	}
	arg.DisplayValue = ""
	if arg.AddressValue() != "0xraw" {
		t.Fatalf("raw fallback missing")
	}
}

func TestEventIndexFallback(t *testing.T) {
	idx := 3
	if (Event{EventIndex: &idx}).Index(9) != 3 {
		t.Fatalf("explicit index ignored")
	}
	if (Event{}).Index(9) != 9 {
		t.Fatalf("positional index not used")
	}
}

func TestEventInputsPresence(t *testing.T) {
	cases := []struct {
		data    string
		missing bool
		inputs  int
	}{
		{`{"name":"Transfer"}`, true, 0},
		{`{"name":"Transfer","inputs":null}`, true, 0},
		{`{"name":"Transfer","inputs":[]}`, false, 0},
		{`{"name":"Transfer","eventIndex":4,"inputs":[{"name":"to","rawValue":"0xB"}]}`, false, 1},
	}
	for _, tc := range cases {
		var ev Event
		if err := json.Unmarshal([]byte(tc.data), &ev); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.data, err)
		}
		if ev.Name != "Transfer" {
			t.Fatalf("name mismatch for %s: %q", tc.data, ev.Name)
		}
		if ev.InputsMissing != tc.missing {
			t.Fatalf("inputs missing for %s: got %v want %v", tc.data, ev.InputsMissing, tc.missing)
		}
		if len(ev.Inputs) != tc.inputs {
			t.Fatalf("inputs length for %s: got %d want %d", tc.data, len(ev.Inputs), tc.inputs)
		}
	}

	var ev Event
	if err := json.Unmarshal([]byte(`{"name":"Transfer","eventIndex":4,"inputs":[]}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.EventIndex == nil || *ev.EventIndex != 4 {
		t.Fatalf("event index not decoded")
	}
	out, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"name":"Transfer","eventIndex":4,"inputs":[]}` {
		t.Fatalf("marshal mismatch: %s", out)
	}
}
