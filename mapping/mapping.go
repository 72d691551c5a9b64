// Package mapping anchors every node of an intermediate tree to a byte range
// of the text it was rendered to (or parsed from), and answers point and
// identity queries in both directions for selection highlighting.
package mapping

import (
	"github.com/teranos/duet/ast"
)

// Span is a half-open byte range [Start, End) into one specific text string.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width returns the span length in bytes
func (s Span) Width() int { return s.End - s.Start }

// Contains reports whether the byte at offset falls inside the span
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// entry pairs a node identity with its span, in scan insertion order
// (children before their parents).
type entry struct {
	id   string
	span Span
}

// Mapping is the bidirectional table between node identity and text range.
// It is derived state: rebuilt wholesale whenever the tree or text changes,
// and read-only afterwards.
type Mapping struct {
	text    string
	byID    map[string]Span
	entries []entry
}

// Create builds the mapping for a tree and the exact text it corresponds to.
// Mapping always completes: nodes whose tokens cannot be located get a
// degenerate zero-width span at the scan cursor.
func Create(root ast.Node, text string) *Mapping {
	m := &Mapping{
		text: text,
		byID: make(map[string]Span),
	}
	if root != nil {
		s := &scanner{text: text, m: m}
		s.scan(root, 0)
	}
	return m
}

// Update rebuilds the mapping in place for a new tree/text pair. There is no
// incremental diffing; a rebuild is a full rescan.
func (m *Mapping) Update(root ast.Node, text string) {
	rebuilt := Create(root, text)
	m.text = rebuilt.text
	m.byID = rebuilt.byID
	m.entries = rebuilt.entries
}

// Text returns the text this mapping was built against
func (m *Mapping) Text() string { return m.text }

// Len returns the number of mapped nodes
func (m *Mapping) Len() int { return len(m.entries) }

// FindPositionByElement returns the span for a node identity
func (m *Mapping) FindPositionByElement(id string) (Span, bool) {
	span, ok := m.byID[id]
	return span, ok
}

// FindElementByPosition returns the identity of the innermost node whose
// span contains the byte offset. On equal widths the deeper node wins.
func (m *Mapping) FindElementByPosition(offset int) (string, bool) {
	bestID := ""
	bestWidth := -1
	for _, e := range m.entries {
		if !e.span.Contains(offset) {
			continue
		}
		// Children are inserted before parents, so a strict comparison
		// keeps the deeper node on equal widths
		if bestWidth < 0 || e.span.Width() < bestWidth {
			bestID = e.id
			bestWidth = e.span.Width()
		}
	}
	return bestID, bestID != ""
}

// Each visits every mapped node in scan order (children before parents)
func (m *Mapping) Each(fn func(id string, span Span)) {
	for _, e := range m.entries {
		fn(e.id, e.span)
	}
}

func (m *Mapping) record(id string, span Span) {
	m.byID[id] = span
	m.entries = append(m.entries, entry{id: id, span: span})
}
