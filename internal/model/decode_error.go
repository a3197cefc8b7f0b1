package model

// DecodeError records a decode failure for one raw record.
type DecodeError struct {
	SchemaID  string `json:"schema_id"`
	Publisher string `json:"publisher"`
	Seq       uint64 `json:"seq"`
	Field     string `json:"field,omitempty"`
	Error     string `json:"error"`
}
