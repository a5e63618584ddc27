package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tags is an ordered list of free-text labels.
// Entries are trimmed and blanks dropped; duplicates are kept.
type Tags []string

// NormalizeTags accepts a []string, a comma separated string, or a list of
// arbitrary JSON scalars and returns the cleaned tag list. It never returns nil.
func NormalizeTags(input any) Tags {
	out := Tags{}
	switch v := input.(type) {
	case nil:
		return out
	case string:
		for _, part := range strings.Split(v, ",") {
			out = appendTag(out, part)
		}
	case []string:
		for _, part := range v {
			out = appendTag(out, part)
		}
	case Tags:
		for _, part := range v {
			out = appendTag(out, part)
		}
	case []any:
		for _, part := range v {
			switch p := part.(type) {
			case nil:
			case string:
				out = appendTag(out, p)
			case float64:
				out = appendTag(out, strconv.FormatFloat(p, 'f', -1, 64))
			default:
				out = appendTag(out, fmt.Sprint(p))
			}
		}
	}
	return out
}

func appendTag(tags Tags, raw string) Tags {
	if t := strings.TrimSpace(raw); t != "" {
		return append(tags, t)
	}
	return tags
}

// UnmarshalJSON accepts either a list or a comma separated string.
func (t *Tags) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.(type) {
	case nil, string, []any:
		*t = NormalizeTags(raw)
		return nil
	default:
		return fmt.Errorf("tags must be a list or a comma separated string")
	}
}

// MarshalJSON renders a nil list as [].
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Value stores tags as JSON text.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads tags written by Value. NULL yields an empty list.
func (t *Tags) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		*t = Tags{}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*t = list
	return nil
}
