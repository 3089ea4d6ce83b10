package mapping

import (
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/rdf"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

// FormatStrategy selects how a resource is described.
type FormatStrategy int

const (
	// StrategyDistribution describes the resource as a generic dcat:Distribution.
	StrategyDistribution FormatStrategy = iota
	// StrategySparqlEndpoint records a void:sparqlEndpoint.
	StrategySparqlEndpoint
	// StrategyVocabulary records a void:vocabulary.
	StrategyVocabulary
	// StrategyDataDump records a void:dataDump.
	StrategyDataDump
	// StrategyExample records a void:exampleResource.
	StrategyExample
)

var strategyNames = map[FormatStrategy]string{
	StrategyDistribution:   "distribution",
	StrategySparqlEndpoint: "sparql-endpoint",
	StrategyVocabulary:     "vocabulary",
	StrategyDataDump:       "data-dump",
	StrategyExample:        "example",
}

func (s FormatStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// formatStrategies is matched exactly and case sensitively.
var formatStrategies = map[string]FormatStrategy{
	"api/sparql": StrategySparqlEndpoint,

	"meta/rdf-schema": StrategyVocabulary,
	"meta/void":       StrategyVocabulary,
	"meta/owl":        StrategyVocabulary,

	"application/x-ntriples": StrategyDataDump,
	"application/x-nquads":   StrategyDataDump,
	"application/rdf+xml":    StrategyDataDump,
	"text/n3":                StrategyDataDump,
	"text/turtle":            StrategyDataDump,

	"example/rdf+xml":  StrategyExample,
	"example/n3":       StrategyExample,
	"example/ntriples": StrategyExample,
	"example/turtle":   StrategyExample,
	"example/rdfa":     StrategyExample,
}

// ClassifyFormat returns the strategy for a resource format. Unlisted and
// empty formats describe a generic distribution.
func ClassifyFormat(format string) FormatStrategy {
	if s, ok := formatStrategies[format]; ok {
		return s
	}
	return StrategyDistribution
}

type resourceHandler func(g *rdf.Graph, subject quad.Value, res catalog.Resource)

func (p *Producer) processResource(g *rdf.Graph, subject quad.Value, res catalog.Resource) {
	p.resources[ClassifyFormat(deref(res.Format))](g, subject, res)
}

func (p *Producer) markVoid(g *rdf.Graph, subject quad.Value) {
	g.Add(subject, p.reg.Type, dcat.IRI(dcat.ClassVoidDataset))
}

func (p *Producer) sparqlEndpoint(g *rdf.Graph, subject quad.Value, res catalog.Resource) {
	p.markVoid(g, subject)
	if u := strings.TrimSpace(deref(res.URL)); u != "" {
		g.Add(subject, dcat.IRI(dcat.VOIDSparqlEndpoint), quad.IRI(u))
	}
}

func (p *Producer) vocabulary(g *rdf.Graph, subject quad.Value, res catalog.Resource) {
	p.markVoid(g, subject)
	if vocab, ok := p.reg.MetaVocabulary(deref(res.Format)); ok {
		g.Add(subject, dcat.IRI(dcat.VOIDVocabulary), vocab)
	}
}

func (p *Producer) dataDump(g *rdf.Graph, subject quad.Value, res catalog.Resource) {
	p.markVoid(g, subject)
	u := strings.TrimSpace(deref(res.URL))
	if u == "" {
		return
	}
	dump := quad.IRI(u)
	g.Add(subject, dcat.IRI(dcat.VOIDDataDump), dump)
	p.attachFormat(g, dump, deref(res.Format))
}

func (p *Producer) example(g *rdf.Graph, subject quad.Value, res catalog.Resource) {
	u := strings.TrimSpace(deref(res.URL))
	if u == "" {
		return
	}
	ex := quad.IRI(u)
	g.Add(subject, dcat.IRI(dcat.VOIDExampleResource), ex)
	p.attachFormat(g, ex, deref(res.Format))
	if res.Description != nil && *res.Description != "" {
		g.Add(ex, p.reg.Label, dcat.Literal(*res.Description))
	}
}

func (p *Producer) distribution(g *rdf.Graph, subject quad.Value, res catalog.Resource) {
	node := rdf.NewBlank()
	g.Add(subject, dcat.IRI(dcat.DCATDistribution), node)
	g.Add(node, p.reg.Type, dcat.IRI(dcat.ClassDistribution))
	if u := strings.TrimSpace(deref(res.URL)); u != "" {
		g.Add(node, dcat.IRI(dcat.DCATAccessURL), quad.IRI(u))
	}
	if f := deref(res.Format); f != "" {
		p.attachFormat(g, node, f)
	}
	if res.Description != nil && *res.Description != "" {
		g.Add(node, p.reg.Label, dcat.Literal(*res.Description))
	}
}

// FormatGraph builds the media type descriptor for format as a graph of
// its own, identified by a fresh blank node.
func (p *Producer) FormatGraph(format string) *rdf.Graph {
	fg := rdf.New(nil)
	fg.Add(fg.ID(), p.reg.Type, dcat.IRI(dcat.ClassMediaType))
	fg.Add(fg.ID(), dcat.IRI(dcat.RDFValue), dcat.Literal(format))
	fg.Add(fg.ID(), p.reg.Label, dcat.Literal(format))
	return fg
}

func (p *Producer) attachFormat(g *rdf.Graph, node quad.Value, format string) {
	fg := p.FormatGraph(format)
	g.Add(node, dcat.IRI(dcat.DCFormat), fg.ID())
	g.Merge(fg)
}
