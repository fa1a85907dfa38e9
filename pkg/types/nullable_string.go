package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NullableString tracks whether a string field was explicitly present in JSON.
// Absent, null, and "" are three distinct states for partial updates.
type NullableString struct {
	Valid bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed string
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// TrimmedValue returns the value with surrounding whitespace removed, or nil.
func (n NullableString) TrimmedValue() *string {
	if n.Value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*n.Value)
	return &trimmed
}

// Clone returns a copy of the NullableString.
func (n NullableString) Clone() NullableString {
	if n.Value == nil {
		return NullableString{Valid: n.Valid}
	}
	copy := *n.Value
	return NullableString{Valid: n.Valid, Value: &copy}
}
