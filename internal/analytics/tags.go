package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Tags is either a list of free-text tags or, for catalog rows imported
// before tags became a list, a single comma-joined string. Normalize is the
// only place that looks at which form a value has.
type Tags struct {
	list   []string
	legacy string
	joined bool
}

func TagList(tags ...string) Tags {
	return Tags{list: tags}
}

func LegacyTags(joined string) Tags {
	return Tags{legacy: joined, joined: true}
}

func (t Tags) IsLegacy() bool {
	return t.joined
}

func (t Tags) raw() []string {
	if t.joined {
		return strings.Split(t.legacy, ",")
	}
	return t.list
}

// Normalize returns the canonical, de-duplicated tag set of one meal in order
// of first appearance.
func (t Tags) Normalize() []string {
	raw := t.raw()
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if tag == "" {
			continue
		}
		normalized := NormalizeTag(tag)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// NormalizeTag lower-cases and trims a tag and collapses internal whitespace
// runs, Unicode spaces included, to a single hyphen. It is idempotent.
func NormalizeTag(raw string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(raw), isTagSpace), "-")
}

func isTagSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t.joined {
		return json.Marshal(t.legacy)
	}
	if t.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.list)
}

// UnmarshalJSON accepts a JSON array, a JSON string or null.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Tags{}
		return nil
	}
	switch data[0] {
	case '"':
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		*t = LegacyTags(joined)
		return nil
	case '[':
		var list []any
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		tags := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		*t = TagList(tags...)
		return nil
	default:
		return fmt.Errorf("tags: unsupported json value %q", string(data))
	}
}
