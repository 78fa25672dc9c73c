package models

import (
	"bytes"
	"encoding/json"

	"github.com/bookverse/bookverse/internal/normalize"
)

// ID is an entity identifier. The API sends ids as strings, numbers or,
// on some endpoints, as a nested object; all decode to a plain string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*id = ID(normalize.CoerceID(v))
	return nil
}

// String returns the id as a string.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return id == ""
}
