package services

import (
	"encoding/json"
)

// NullableString tells an absent JSON key apart from an explicit null.
// Set is true whenever the key was present.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// NewNullableString returns a present value; nil means an explicit null.
func NewNullableString(v *string) NullableString {
	return NullableString{Set: true, Value: v}
}
