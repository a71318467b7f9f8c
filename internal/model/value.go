package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a decoded argument value as it appears in the event JSON. Strings are
// kept verbatim, numbers keep their literal text, and null or absent values are
// the empty Value.
type Value string

// IsSet reports whether the value carries any text.
func (v Value) IsSet() bool {
	return v != ""
}

func (v Value) String() string {
	return string(v)
}

// UnmarshalJSON accepts any JSON scalar, array or object.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return err
		}
		*v = Value(strconv.FormatBool(b))
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Value(buf.String())
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value(n.String())
	}
	return nil
}

// FirstSet returns the first value that is set, or the empty Value.
func FirstSet(values ...Value) Value {
	for _, v := range values {
		if v.IsSet() {
			return v
		}
	}
	return ""
}
