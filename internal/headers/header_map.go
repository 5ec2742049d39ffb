package headers

import (
	"net/http"
	"sort"
	"strings"
)

// HeaderMap maps lower-cased header names to their verbatim values.
type HeaderMap map[string]string

// Set stores value under the lower-cased name, replacing any earlier value.
func (h HeaderMap) Set(name, value string) {
	h[strings.ToLower(name)] = value
}

// Get returns the value stored for name, matching case-insensitively.
func (h HeaderMap) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Has reports whether name is present.
func (h HeaderMap) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Lookup returns the value for name and whether it was present.
func (h HeaderMap) Lookup(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	v, ok := h[strings.ToLower(name)]
	return v, ok
}

// Normalize returns a copy whose keys are all lower-case. Keys that are
// already lower-case win over mixed-case aliases; remaining aliases are
// applied in sorted order so the result does not depend on map iteration.
func (h HeaderMap) Normalize() HeaderMap {
	out := make(HeaderMap, len(h))
	var aliases []string
	for k, v := range h {
		lower := strings.ToLower(k)
		if lower == k {
			out[k] = v
			continue
		}
		aliases = append(aliases, k)
	}
	sort.Strings(aliases)
	for _, k := range aliases {
		lower := strings.ToLower(k)
		if _, exact := h[lower]; exact {
			continue
		}
		out[lower] = h[k]
	}
	return out
}

// Keys returns the header names in sorted order.
func (h HeaderMap) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromHTTPHeader converts a net/http header set. When a header carries
// several values the last one wins.
func FromHTTPHeader(src http.Header) HeaderMap {
	out := make(HeaderMap, len(src))
	for name, values := range src {
		if len(values) == 0 {
			continue
		}
		out.Set(name, values[len(values)-1])
	}
	return out
}
