// Package mapping turns catalog records into RDF graphs described with
// the DCAT, Dublin Core, FOAF and VoID vocabularies.
package mapping

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/rdf"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

// TargetResolver returns the subject of the record named name, or nil when
// the record cannot be resolved.
type TargetResolver func(name string) quad.Value

// SiteResolver resolves record names to <siteURL>/dataset/<name>. With an
// empty siteURL nothing resolves.
func SiteResolver(siteURL string) TargetResolver {
	base := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	return func(name string) quad.Value {
		if base == "" || name == "" {
			return nil
		}
		return quad.IRI(base + "/dataset/" + name)
	}
}

// Producer builds record graphs. It holds no mutable state after
// construction and is safe for concurrent use.
type Producer struct {
	reg           *dcat.Registry
	resolveTarget TargetResolver
	logger        *slog.Logger

	resources map[FormatStrategy]resourceHandler
}

// Option configures a Producer.
type Option func(*Producer)

// WithTargetResolver sets how links:<name> extras find the linked record.
func WithTargetResolver(r TargetResolver) Option {
	return func(p *Producer) {
		if r != nil {
			p.resolveTarget = r
		}
	}
}

// WithLogger sets the logger used for skipped extras.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Producer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProducer creates a Producer over reg. A nil reg uses the default
// license namespace.
func NewProducer(reg *dcat.Registry, opts ...Option) *Producer {
	if reg == nil {
		reg = dcat.NewRegistry("")
	}
	p := &Producer{
		reg:           reg,
		resolveTarget: SiteResolver(""),
		logger:        slog.Default(),
	}
	p.resources = map[FormatStrategy]resourceHandler{
		StrategySparqlEndpoint: p.sparqlEndpoint,
		StrategyVocabulary:     p.vocabulary,
		StrategyDataDump:       p.dataDump,
		StrategyExample:        p.example,
		StrategyDistribution:   p.distribution,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the vocabulary registry the producer was built with.
func (p *Producer) Registry() *dcat.Registry {
	return p.reg
}

// Subject returns the term a record is described under: its catalog URL,
// or a fresh blank node when it has none.
func Subject(rec *catalog.Record) quad.Value {
	if u := strings.TrimSpace(rec.CatalogURL); u != "" {
		return quad.IRI(u)
	}
	return rdf.NewBlank()
}

// Produce maps rec to a new graph identified by the record's subject.
func (p *Producer) Produce(rec *catalog.Record) *rdf.Graph {
	subject := Subject(rec)
	g := rdf.New(subject)
	g.Remove(nil, nil, nil)

	g.Add(subject, p.reg.Type, dcat.IRI(dcat.ClassDataset))
	g.Add(subject, dcat.IRI(dcat.OWLSameAs), p.reg.UUID(rec.ID))
	g.Add(subject, dcat.IRI(dcat.DCIdentifier), dcat.Literal(rec.Name))

	if u := strings.TrimSpace(deref(rec.URL)); u != "" {
		g.Add(subject, dcat.IRI(dcat.FOAFHomepage), quad.IRI(u))
	}

	if rec.Title != nil {
		g.Add(subject, p.reg.Label, dcat.Literal(*rec.Title))
		g.Add(subject, dcat.IRI(dcat.DCTitle), dcat.Literal(*rec.Title))
	} else {
		g.Add(subject, p.reg.Label, dcat.Literal(rec.Name))
	}

	if rec.Notes != nil {
		g.Add(subject, dcat.IRI(dcat.DCDescription), dcat.Literal(*rec.Notes))
	}

	if id := deref(rec.LicenseID); id != "" {
		g.Add(subject, dcat.IRI(dcat.DCRights), p.reg.License(id))
	}

	p.person(g, subject, dcat.DCCreator, rec.Author, rec.AuthorEmail)
	p.person(g, subject, dcat.DCContributor, rec.Maintainer, rec.MaintainerEmail)

	for _, tag := range rec.Tags {
		g.Add(subject, dcat.IRI(dcat.DCATKeyword), dcat.Literal(tag))
	}

	if rec.RatingsAverage != nil {
		rating := strconv.FormatFloat(*rec.RatingsAverage, 'f', -1, 64)
		g.Add(subject, dcat.IRI(dcat.REVRating), dcat.Typed(rating, dcat.XSDFloat))
	}

	for _, res := range rec.Resources {
		p.processResource(g, subject, res)
	}

	for _, key := range sortedKeys(rec.Extras) {
		p.processExtra(g, subject, key, rec.Extras[key])
	}

	for _, rel := range rec.Relationships {
		p.processRelationship(g, subject, rel)
	}

	return g
}

// person links a blank node carrying a name and mailbox when either is
// set.
func (p *Producer) person(g *rdf.Graph, subject quad.Value, predicate string, name, email *string) {
	n, e := deref(name), deref(email)
	if n == "" && e == "" {
		return
	}
	node := rdf.NewBlank()
	g.Add(subject, dcat.IRI(predicate), node)
	if n != "" {
		g.Add(node, dcat.IRI(dcat.FOAFName), dcat.Literal(n))
	}
	if e != "" {
		g.Add(node, dcat.IRI(dcat.FOAFMbox), quad.IRI("mailto:"+e))
	}
}

// processRelationship is where typed links between records will be
// mapped. Relationships are not mapped yet.
func (p *Producer) processRelationship(_ *rdf.Graph, _ quad.Value, _ any) {}
