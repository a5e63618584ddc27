package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ref is an optional reference to another record in a request payload.
// Absent, null, 0 and "" all decode as "no reference".
type Ref struct {
	id *int64
}

// NewRef returns a Ref pointing at id.
func NewRef(id int64) Ref {
	return Ref{id: &id}
}

// Ptr returns the referenced id or nil.
func (r Ref) Ptr() *int64 {
	return r.id
}

// IsSet reports whether a reference was supplied.
func (r Ref) IsSet() bool {
	return r.id != nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		r.id = nil
		return nil
	}
	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			r.id = nil
			return nil
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return fmt.Errorf("invalid reference id %q", raw)
	}
	if id == 0 {
		r.id = nil
		return nil
	}
	r.id = &id
	return nil
}

// MarshalJSON renders the id or null.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.id == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*r.id, 10)), nil
}
