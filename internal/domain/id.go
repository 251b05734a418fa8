package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a backend identifier. The backend emits identifiers either as JSON
// strings or as numbers; both decode to the same string form so lookups can
// compare them directly.
type ID string

// UnmarshalJSON accepts "42", 42 and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
