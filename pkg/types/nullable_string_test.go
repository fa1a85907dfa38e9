package types

import (
	"encoding/json"
	"testing"
)

func TestNullableStringUnmarshal(t *testing.T) {
	type payload struct {
		Phone NullableString `json:"phone_number"`
	}

	var absent payload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal absent: %v", err)
	}
	if absent.Phone.Valid {
		t.Fatal("absent field must not be Valid")
	}

	var null payload
	if err := json.Unmarshal([]byte(`{"phone_number":null}`), &null); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !null.Phone.Valid || null.Phone.Value != nil {
		t.Fatalf("null field should be Valid with nil value, got %+v", null.Phone)
	}

	var set payload
	if err := json.Unmarshal([]byte(`{"phone_number":" 555-0100 "}`), &set); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !set.Phone.Valid || set.Phone.Value == nil || *set.Phone.Value != " 555-0100 " {
		t.Fatalf("unexpected value state: %+v", set.Phone)
	}
	if trimmed := set.Phone.TrimmedValue(); trimmed == nil || *trimmed != "555-0100" {
		t.Fatalf("unexpected trimmed value: %v", trimmed)
	}
}

func TestNullableStringClone(t *testing.T) {
	v := "original"
	n := NullableString{Valid: true, Value: &v}
	c := n.Clone()
	*c.Value = "changed"
	if *n.Value != "original" {
		t.Fatal("clone shares backing string")
	}
}
