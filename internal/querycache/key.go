package querycache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached query. Parts are compared by their canonical JSON
// encoding, so two structurally equal descriptors address the same entry.
type Key []any

// NewKey builds a key from its parts
func NewKey(parts ...any) Key {
	return Key(parts)
}

// Append returns a new key with extra parts
func (k Key) Append(parts ...any) Key {
	out := make(Key, 0, len(k)+len(parts))
	out = append(out, k...)
	return append(out, parts...)
}

// String returns the canonical encoding of the key
func (k Key) String() string {
	return strings.Join(k.parts(), "/")
}

// HasPrefix reports whether the leading parts of k equal prefix
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	kp := k.parts()
	pp := prefix.parts()
	for i := range pp {
		if kp[i] != pp[i] {
			return false
		}
	}
	return true
}

// Equal reports value equality
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, p := range k {
		out[i] = canonical(p)
	}
	return out
}

// canonical encodes a part as JSON. encoding/json sorts map keys, which
// gives a stable form for filter maps and structs alike.
func canonical(part any) string {
	if s, ok := part.(string); ok {
		b, _ := json.Marshal(s)
		return string(b)
	}
	b, err := json.Marshal(part)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(part))
	}
	// structs are re-encoded through a map so field order never matters
	if len(b) > 0 && b[0] == '{' {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err == nil {
			b, _ = json.Marshal(m)
		}
	}
	return string(b)
}
