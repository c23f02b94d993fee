package client

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Query builds query parameters from a value map. Nil values, empty
// strings, nil pointers and empty slices are omitted.
func Query(values map[string]any) url.Values {
	q := url.Values{}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, s := range queryStrings(values[k]) {
			q.Add(k, s)
		}
	}
	return q
}

func queryStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		var out []string
		for _, s := range val {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case bool:
		if val {
			return []string{"true"}
		}
		return []string{"false"}
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return []string{val.Format(time.RFC3339)}
	case fmt.Stringer:
		s := val.String()
		if s == "" {
			return nil
		}
		return []string{s}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return queryStrings(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		var out []string
		for i := 0; i < rv.Len(); i++ {
			out = append(out, queryStrings(rv.Index(i).Interface())...)
		}
		return out
	case reflect.String:
		return queryStrings(rv.String())
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return nil
	}
	return []string{s}
}
