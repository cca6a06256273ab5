// Package form parses URL-encoded data into nested values,
// honoring bracketed keys such as "name[]" and "user[address][city]".
//
// A plain key maps to a string, the last occurrence winning.
// "key[]" appends to a sequence and "key[sub]" sets a named entry.
// A nested container whose keys are exactly "0".."n-1", in order, becomes a []any;
// any other container becomes a map[string]any.
package form

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParseQuery parses a query string or an application/x-www-form-urlencoded body.
// ParseQuery is lenient: a pair whose escapes cannot be decoded keeps its raw text
// and an empty pair is skipped.
func ParseQuery(query string) map[string]any {
	root := newNode()
	for query != "" {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if pair == "" {
			continue
		}

		key, val, _ := strings.Cut(pair, "=")
		key = unescape(key)
		if key == "" {
			continue
		}

		root.set(splitKey(key), unescape(val))
	}

	return root.mapping()
}

// FromValues builds the same shape ParseQuery does from already-decoded values,
// as produced by e.g. (*http.Request).PostForm.
// Keys are applied in lexical order; the last value of a key wins unless the key appends.
func FromValues(vals url.Values) map[string]any {
	keys := make([]string, 0, len(vals))
	for key := range vals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := newNode()
	for _, key := range keys {
		if key == "" {
			continue
		}

		path := splitKey(key)
		for _, val := range vals[key] {
			root.set(path, val)
		}
	}

	return root.mapping()
}

func unescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}

	return u
}

// splitKey splits "a[b][]" into ["a", "b", ""].
// A key without a well-formed leading name is used verbatim,
// and text following an unmatched "[" is dropped.
func splitKey(key string) []string {
	i := strings.IndexByte(key, '[')
	if i <= 0 {
		return []string{key}
	}

	path := []string{key[:i]}
	rest := key[i:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}

		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}

	if len(path) == 1 {
		return []string{key}
	}

	return path
}

// node is an ordered container under construction.
type node struct {
	keys []string
	vals map[string]any
	next int
}

func newNode() *node {
	return &node{vals: make(map[string]any)}
}

func (n *node) key(seg string) string {
	if seg == "" {
		seg = strconv.Itoa(n.next)
	}

	if i, err := strconv.Atoi(seg); err == nil && i >= n.next {
		n.next = i + 1
	}

	if _, ok := n.vals[seg]; !ok {
		n.keys = append(n.keys, seg)
	}

	return seg
}

func (n *node) set(path []string, val string) {
	k := n.key(path[0])
	if len(path) == 1 {
		n.vals[k] = val
		return
	}

	child, ok := n.vals[k].(*node)
	if !ok {
		child = newNode()
		n.vals[k] = child
	}

	child.set(path[1:], val)
}

func (n *node) mapping() map[string]any {
	m := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		m[k] = resolve(n.vals[k])
	}

	return m
}

func (n *node) value() any {
	for i, k := range n.keys {
		if k != strconv.Itoa(i) {
			return n.mapping()
		}
	}

	seq := make([]any, len(n.keys))
	for i, k := range n.keys {
		seq[i] = resolve(n.vals[k])
	}

	return seq
}

func resolve(v any) any {
	if child, ok := v.(*node); ok {
		return child.value()
	}

	return v
}
