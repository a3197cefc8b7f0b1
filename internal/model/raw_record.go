package model

import (
	"encoding/json"
)

// RawRecord is one record as retrieved from the event source, before any
// decoding. Fields is kept opaque: the source may emit a positional array,
// a named-field object, or values nested in {value: ...} wrappers.
type RawRecord struct {
	SchemaID  string          `json:"schema_id"`
	Publisher string          `json:"publisher"`
	Seq       uint64          `json:"seq"`
	Fields    json.RawMessage `json:"fields"`
	FetchedAt string          `json:"fetched_at"`
}

// MarshalJSON ensures RawRecord is encoded with stable field names.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	type Alias RawRecord
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a RawRecord from JSON.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	type Alias RawRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = RawRecord(a)
	return nil
}
