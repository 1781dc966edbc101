// Package datapath reads and writes values inside JSON-shaped entity graphs
// using dot-separated paths such as "abilities.str.mod" or "weapons.0.name".
//
// Entities are plain map[string]any / []any trees as produced by
// encoding/json. Numeric segments index into sequences when the current node
// is a sequence and act as ordinary keys when it is a mapping.
package datapath

import (
	"sort"
	"strconv"
	"strings"
)

// Separator delimits path segments.
const Separator = "."

// Split breaks a path into its segments. Surrounding whitespace is ignored and
// an empty path yields no segments.
func Split(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Join builds a path from segments, skipping empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.Trim(strings.TrimSpace(segment), Separator)
		if segment == "" {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, Separator)
}

// SequenceBase returns the part of path ahead of its first index segment, so
// "armor_class.0.value" yields "armor_class". Paths without an index segment
// after the first position yield "".
func SequenceBase(path string) string {
	segments := Split(path)
	for i := 1; i < len(segments); i++ {
		idx, err := strconv.Atoi(segments[i])
		if err == nil && idx >= 0 && strconv.Itoa(idx) == segments[i] {
			return Join(segments[:i]...)
		}
	}
	return ""
}

// Lookup walks root following path and reports whether a value was found.
// Missing keys, out of range indexes and scalar intermediates all report
// false; Lookup never panics on malformed graphs.
func Lookup(root any, path string) (any, bool) {
	segments := Split(path)
	if len(segments) == 0 {
		return nil, false
	}

	current := root
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Get returns the value at path, or nil when it is absent. An empty path
// returns the empty string so callers binding controls always receive a
// printable value.
func Get(root any, path string) any {
	if len(Split(path)) == 0 {
		return ""
	}
	value, ok := Lookup(root, path)
	if !ok {
		return nil
	}
	return value
}

// Set assigns value at path inside root, creating intermediate mappings as
// needed, and returns root. Intermediates that are scalars (or nil) are
// replaced by fresh mappings. Sequences are indexed in place when the segment
// addresses an existing element; otherwise they are promoted to a mapping
// keyed by index. A nil root is allocated; an empty path leaves root as is.
func Set(root map[string]any, path string, value any) map[string]any {
	if root == nil {
		root = make(map[string]any)
	}
	segments := Split(path)
	if len(segments) == 0 {
		return root
	}

	var (
		container any = root
		assign        = func(v any) {}
	)
	for i, segment := range segments {
		last := i == len(segments)-1
		switch node := container.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return root
			}
			next, ok := node[segment].(map[string]any)
			if ok {
				container = next
				continue
			}
			if seq, isSeq := node[segment].([]any); isSeq {
				key := segment
				assign = func(v any) { node[key] = v }
				container = seq
				continue
			}
			fresh := make(map[string]any)
			node[segment] = fresh
			container = fresh
		case []any:
			idx, err := strconv.Atoi(segment)
			if err == nil && idx >= 0 && idx < len(node) {
				if last {
					node[idx] = value
					return root
				}
				switch child := node[idx].(type) {
				case map[string]any:
					container = child
				case []any:
					pos := idx
					assign = func(v any) { node[pos] = v }
					container = child
				default:
					fresh := make(map[string]any)
					node[idx] = fresh
					container = fresh
				}
				continue
			}
			promoted := make(map[string]any, len(node)+1)
			for pos, element := range node {
				promoted[strconv.Itoa(pos)] = element
			}
			assign(promoted)
			container = promoted
			if last {
				promoted[segment] = value
				return root
			}
			fresh := make(map[string]any)
			promoted[segment] = fresh
			container = fresh
		}
	}
	return root
}

// CompactSequences returns a copy of v in which every mapping whose keys are
// exactly "0".."n-1" has been turned into a sequence. Mappings with gaps,
// 1-based keys or non-numeric keys are kept as mappings.
func CompactSequences(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, value := range node {
			out[key] = CompactSequences(value)
		}
		if seq, ok := asSequence(out); ok {
			return seq
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, value := range node {
			out[i] = CompactSequences(value)
		}
		return out
	default:
		return v
	}
}

// CompactAt replaces the mapping at path with a sequence when its keys are
// exactly "0".."n-1". The elements are kept as they are. It reports whether
// the value was converted.
func CompactAt(root map[string]any, path string) bool {
	node, ok := Lookup(root, path)
	if !ok {
		return false
	}
	mapping, ok := node.(map[string]any)
	if !ok {
		return false
	}
	seq, ok := asSequence(mapping)
	if !ok {
		return false
	}
	Set(root, path, seq)
	return true
}

func asSequence(m map[string]any) ([]any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	out := make([]any, len(m))
	for key, value := range m {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(m) || strconv.Itoa(idx) != key {
			return nil, false
		}
		out[idx] = value
	}
	return out, true
}

// Paths lists every leaf path in root in sorted order. Sequences contribute
// their numeric indexes as segments.
func Paths(root any) []string {
	var out []string
	collectPaths(root, "", &out)
	sort.Strings(out)
	return out
}

func collectPaths(node any, prefix string, out *[]string) {
	switch v := node.(type) {
	case map[string]any:
		if len(v) == 0 && prefix != "" {
			*out = append(*out, prefix)
		}
		for key, child := range v {
			collectPaths(child, Join(prefix, key), out)
		}
	case []any:
		if len(v) == 0 && prefix != "" {
			*out = append(*out, prefix)
		}
		for i, child := range v {
			collectPaths(child, Join(prefix, strconv.Itoa(i)), out)
		}
	default:
		if prefix != "" {
			*out = append(*out, prefix)
		}
	}
}
