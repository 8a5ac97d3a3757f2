// Package query encodes and decodes URL query strings the way the
// x-callback-url protocol needs them: ordered on the way out, last value
// wins on the way in, and no error paths.
package query

import (
	"net/url"
	"sort"
	"strings"
)

// Pair is a single query item.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered list of query items.
type Pairs []Pair

// Add appends a pair, keeping any earlier pair with the same key.
func (p *Pairs) Add(key, value string) {
	*p = append(*p, Pair{Key: key, Value: value})
}

// Set replaces the value of the first pair with the given key in place,
// or appends a new pair if the key is absent.
func (p *Pairs) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	p.Add(key, value)
}

// Get returns the last value stored under key.
func (p Pairs) Get(key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, pair := range p {
		if pair.Key == key {
			value, found = pair.Value, true
		}
	}
	return value, found
}

// Map collapses the pairs into a map. Later pairs win.
func (p Pairs) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, pair := range p {
		m[pair.Key] = pair.Value
	}
	return m
}

// FromMap builds pairs from a map with keys in ascending order.
func FromMap(m map[string]string) Pairs {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make(Pairs, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: m[k]})
	}
	return pairs
}

// Decode parses a raw query string.
// Pairs are split on '&' and then on the first '='; anything after that
// belongs to the value. Pairs without '=' are skipped. Keys and values are
// percent-decoded ('+' stays literal); a component that fails to decode is
// kept as-is. Later pairs overwrite earlier ones.
func Decode(raw string) map[string]string {
	result := make(map[string]string)
	if raw == "" {
		return result
	}
	for _, pair := range strings.Split(raw, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		result[unescape(key)] = unescape(value)
	}
	return result
}

// Encode renders pairs as a query string, preserving their order.
// Every byte outside the RFC 3986 unreserved set is percent-encoded, so
// values may safely carry whole URLs.
func Encode(pairs Pairs) string {
	var b strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(pair.Key))
		b.WriteByte('=')
		b.WriteString(Escape(pair.Value))
	}
	return b.String()
}

// Append adds pairs to an existing raw query string.
func Append(raw string, pairs Pairs) string {
	if len(pairs) == 0 {
		return raw
	}
	encoded := Encode(pairs)
	if raw == "" {
		return encoded
	}
	return raw + "&" + encoded
}

const upperhex = "0123456789ABCDEF"

// Escape percent-encodes s, leaving only unreserved characters intact.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(buf)
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
