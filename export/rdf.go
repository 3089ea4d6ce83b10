// Package export serializes record graphs as Turtle, N-Triples or JSON-LD.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/rdf"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

// Prefixes maps namespace prefixes to namespace IRIs.
type Prefixes map[string]string

// DefaultPrefixes returns the namespaces used by the catalog mapping.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		"dcat":  dcat.NamespaceDCAT,
		"dc":    dcat.NamespaceDC,
		"foaf":  dcat.NamespaceFOAF,
		"owl":   dcat.NamespaceOWL,
		"rdf":   dcat.NamespaceRDF,
		"rdfs":  dcat.NamespaceRDFS,
		"xsd":   dcat.NamespaceXSD,
		"void":  dcat.NamespaceVOID,
		"skos":  dcat.NamespaceSKOS,
		"rev":   dcat.NamespaceREV,
		"opmv":  dcat.NamespaceOPMV,
		"scovo": dcat.NamespaceSCOVO,
	}
}

// localName matches the local parts safe to write as a prefixed name.
var localName = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)?$`)

// Write serializes g in the given format.
func Write(w io.Writer, g *rdf.Graph, format Format) error {
	switch format {
	case FormatTurtle:
		return WriteTurtle(w, g, DefaultPrefixes())
	case FormatNTriples:
		return g.WriteNTriples(w)
	case FormatJSONLD:
		return WriteJSONLD(w, g, DefaultPrefixes())
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// compactor shortens IRIs against a prefix table and remembers which
// prefixes it used.
type compactor struct {
	prefixes Prefixes
	used     map[string]bool
}

func newCompactor(prefixes Prefixes) *compactor {
	return &compactor{prefixes: prefixes, used: make(map[string]bool)}
}

// shorten returns the prefixed name for iri, choosing the longest
// matching namespace.
func (c *compactor) shorten(iri string) (string, bool) {
	bestPrefix, bestNS := "", ""
	for prefix, ns := range c.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) && localName.MatchString(iri[len(ns):]) {
			bestPrefix, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return "", false
	}
	c.used[bestPrefix] = true
	return bestPrefix + ":" + iri[len(bestNS):], true
}

func (c *compactor) iri(iri string) string {
	if short, ok := c.shorten(iri); ok {
		return short
	}
	return iri
}

// context returns the used prefixes sorted by name.
func (c *compactor) context() []string {
	out := make([]string, 0, len(c.used))
	for prefix := range c.used {
		out = append(out, prefix)
	}
	sort.Strings(out)
	return out
}

// turtleTerm formats a term for Turtle output.
func (c *compactor) turtleTerm(v quad.Value) string {
	switch v := v.(type) {
	case quad.IRI:
		if short, ok := c.shorten(string(v)); ok {
			return short
		}
	case quad.TypedString:
		if short, ok := c.shorten(string(v.Type)); ok {
			return v.Value.String() + "^^" + short
		}
	}
	return v.String()
}

type predicateObjects struct {
	predicate quad.Value
	objects   []quad.Value
}

// bySubject groups the triples about subject by predicate, keeping the
// order of first appearance.
func bySubject(g *rdf.Graph, subject quad.Value) []*predicateObjects {
	var out []*predicateObjects
	index := make(map[string]*predicateObjects)
	for _, q := range g.Match(subject, nil, nil) {
		key := q.Predicate.String()
		po, ok := index[key]
		if !ok {
			po = &predicateObjects{predicate: q.Predicate}
			index[key] = po
			out = append(out, po)
		}
		po.objects = append(po.objects, q.Object)
	}
	return out
}

var rdfType = quad.IRI(dcat.RDFType)

// WriteTurtle writes g as Turtle, declaring only the prefixes it uses.
func WriteTurtle(w io.Writer, g *rdf.Graph, prefixes Prefixes) error {
	c := newCompactor(prefixes)

	var body strings.Builder
	for i, subject := range g.Subjects() {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(c.turtleTerm(subject))
		groups := bySubject(g, subject)
		for j, po := range groups {
			pred := "a"
			if po.predicate.String() != rdfType.String() {
				pred = c.turtleTerm(po.predicate)
			}
			objects := make([]string, len(po.objects))
			for k, o := range po.objects {
				objects[k] = c.turtleTerm(o)
			}
			sep := " ;"
			if j == len(groups)-1 {
				sep = " ."
			}
			fmt.Fprintf(&body, "\n    %s %s%s", pred, strings.Join(objects, ", "), sep)
		}
		body.WriteString("\n")
	}

	bw := bufio.NewWriter(w)
	for _, prefix := range c.context() {
		fmt.Fprintf(bw, "@prefix %s: <%s> .\n", prefix, prefixes[prefix])
	}
	if len(c.used) > 0 {
		bw.WriteString("\n")
	}
	bw.WriteString(body.String())
	return bw.Flush()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]string `json:"@context"`
	Graph   []JSONLDNode      `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string           `json:"@id"`
	Type       []string         `json:"@type,omitempty"`
	Properties map[string][]any `json:"-"`
}

// MarshalJSON flattens Properties into the node object.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// BuildJSONLD converts g to a flattened JSON-LD document with one node
// per subject.
func BuildJSONLD(g *rdf.Graph, prefixes Prefixes) JSONLDDocument {
	c := newCompactor(prefixes)
	doc := JSONLDDocument{
		Context: make(map[string]string),
		Graph:   make([]JSONLDNode, 0),
	}

	for _, subject := range g.Subjects() {
		node := JSONLDNode{
			ID:         c.nodeID(subject),
			Properties: make(map[string][]any),
		}
		for _, po := range bySubject(g, subject) {
			if po.predicate.String() == rdfType.String() {
				for _, o := range po.objects {
					if iri, ok := o.(quad.IRI); ok {
						node.Type = append(node.Type, c.iri(string(iri)))
						continue
					}
					key := c.iri(dcat.RDFType)
					node.Properties[key] = append(node.Properties[key], c.jsonValue(o))
				}
				continue
			}
			key := c.iri(iriOf(po.predicate))
			for _, o := range po.objects {
				node.Properties[key] = append(node.Properties[key], c.jsonValue(o))
			}
		}
		doc.Graph = append(doc.Graph, node)
	}

	for _, prefix := range c.context() {
		doc.Context[prefix] = prefixes[prefix]
	}
	return doc
}

// WriteJSONLD writes g as an indented JSON-LD document.
func WriteJSONLD(w io.Writer, g *rdf.Graph, prefixes Prefixes) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSONLD(g, prefixes))
}

func (c *compactor) nodeID(v quad.Value) string {
	switch v := v.(type) {
	case quad.IRI:
		return c.iri(string(v))
	case quad.BNode:
		return v.String()
	}
	return v.String()
}

func (c *compactor) jsonValue(v quad.Value) any {
	switch v := v.(type) {
	case quad.IRI, quad.BNode:
		return map[string]string{"@id": c.nodeID(v)}
	case quad.String:
		return map[string]string{"@value": string(v)}
	case quad.TypedString:
		return map[string]string{"@value": string(v.Value), "@type": c.iri(string(v.Type))}
	case quad.LangString:
		return map[string]string{"@value": string(v.Value), "@language": v.Lang}
	}
	return map[string]string{"@value": v.String()}
}

func iriOf(v quad.Value) string {
	if iri, ok := v.(quad.IRI); ok {
		return string(iri)
	}
	return v.String()
}
