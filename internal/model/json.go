package model

import (
	"encoding/json"
	"math"
)

// JSONFloat encodes NaN and infinities as null; encoding/json rejects them.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// MarshalJSON writes a null value for an all-null group.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   interface{} `json:"key"`
		Value JSONFloat   `json:"value"`
		Count int         `json:"count"`
	}{e.Key, JSONFloat(e.Value), e.Count})
}

// MarshalJSON writes missing numeric cells as null.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Sales    JSONFloat `json:"sales"`
		Discount JSONFloat `json:"discount"`
		Profit   JSONFloat `json:"profit"`
	}{plain(r), JSONFloat(r.Sales), JSONFloat(r.Discount), JSONFloat(r.Profit)})
}
