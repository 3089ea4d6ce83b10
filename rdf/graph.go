// Package rdf provides the in-memory graph used to assemble the triples
// describing one catalog record before they are serialised or shipped to
// a triple store.
//
// Terms are cayley quad values: quad.IRI for named resources, quad.BNode
// for blank identifiers and quad.String / quad.TypedString for literals.
package rdf

import (
	"io"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/google/uuid"
)

// NewBlank returns a blank identifier that is unique for the lifetime of
// the process. Labels are random, so two calls never collide.
func NewBlank() quad.BNode {
	return quad.BNode("n" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

type tripleKey struct {
	s, p, o string
}

func keyOf(s, p, o quad.Value) tripleKey {
	return tripleKey{s: s.String(), p: p.String(), o: o.String()}
}

// Graph is an identified, unordered set of triples. Insertion order is
// remembered only so serialised output is stable.
type Graph struct {
	id      quad.Value
	triples map[tripleKey]quad.Quad
	order   []tripleKey
}

// New creates an empty graph identified by id. A nil id gets a fresh
// blank identifier.
func New(id quad.Value) *Graph {
	if id == nil {
		id = NewBlank()
	}
	return &Graph{
		id:      id,
		triples: make(map[tripleKey]quad.Quad),
	}
}

// ID returns the graph identifier.
func (g *Graph) ID() quad.Value {
	return g.id
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Add inserts a triple. Adding a triple already present is a no-op.
func (g *Graph) Add(s, p, o quad.Value) {
	k := keyOf(s, p, o)
	if _, ok := g.triples[k]; ok {
		return
	}
	g.triples[k] = quad.Quad{Subject: s, Predicate: p, Object: o}
	g.order = append(g.order, k)
}

// Contains reports whether the exact triple is present.
func (g *Graph) Contains(s, p, o quad.Value) bool {
	_, ok := g.triples[keyOf(s, p, o)]
	return ok
}

// Match returns the triples matching the pattern in insertion order. A nil
// component matches anything.
func (g *Graph) Match(s, p, o quad.Value) []quad.Quad {
	var out []quad.Quad
	for _, k := range g.order {
		q := g.triples[k]
		if matches(q, s, p, o) {
			out = append(out, q)
		}
	}
	return out
}

// Remove deletes every triple matching the pattern and returns how many
// were removed. A nil component matches anything, so Remove(nil, nil, nil)
// clears the graph.
func (g *Graph) Remove(s, p, o quad.Value) int {
	removed := 0
	kept := g.order[:0]
	for _, k := range g.order {
		if matches(g.triples[k], s, p, o) {
			delete(g.triples, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	g.order = kept
	return removed
}

// Merge adds every triple of other to g. The identifier of g is kept.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for _, k := range other.order {
		q := other.triples[k]
		g.Add(q.Subject, q.Predicate, q.Object)
	}
}

// Triples returns all triples in insertion order.
func (g *Graph) Triples() []quad.Quad {
	out := make([]quad.Quad, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.triples[k])
	}
	return out
}

// Subjects returns each distinct subject once, in order of first use.
func (g *Graph) Subjects() []quad.Value {
	seen := make(map[string]struct{})
	var out []quad.Value
	for _, k := range g.order {
		if _, ok := seen[k.s]; ok {
			continue
		}
		seen[k.s] = struct{}{}
		out = append(out, g.triples[k].Subject)
	}
	return out
}

// WriteNTriples serialises the graph as N-Triples.
func (g *Graph) WriteNTriples(w io.Writer) error {
	nw := nquads.NewWriter(w)
	for _, k := range g.order {
		if err := nw.WriteQuad(g.triples[k]); err != nil {
			return err
		}
	}
	return nw.Close()
}

// NTriples returns the graph serialised as N-Triples.
func (g *Graph) NTriples() (string, error) {
	var sb strings.Builder
	if err := g.WriteNTriples(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ReadNTriples parses N-Triples into a graph identified by id.
func ReadNTriples(r io.Reader, id quad.Value) (*Graph, error) {
	g := New(id)
	qr := nquads.NewReader(r, false)
	for {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, err
		}
		g.Add(q.Subject, q.Predicate, q.Object)
	}
}

func matches(q quad.Quad, s, p, o quad.Value) bool {
	if s != nil && q.Subject.String() != s.String() {
		return false
	}
	if p != nil && q.Predicate.String() != p.String() {
		return false
	}
	if o != nil && q.Object.String() != o.String() {
		return false
	}
	return true
}
