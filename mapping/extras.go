package mapping

import (
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/rdf"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

type extraHandler func(p *Producer, g *rdf.Graph, subject quad.Value, key string, value any)

type extraPrefix struct {
	prefix string
	handle extraHandler
}

// extraPrefixes are checked before the exact keys. The rest of the key
// after the prefix is free text and may contain any character.
var extraPrefixes = []extraPrefix{
	{prefix: "links:", handle: (*Producer).linkset},
}

var extraKeys = map[string]extraHandler{
	"triples":        (*Producer).tripleCount,
	"shortname":      literalExtra(dcat.RDFSLabel),
	"license_link":   (*Producer).licenseLink,
	"date_created":   literalExtra(dcat.DCCreated),
	"date_published": literalExtra(dcat.DCAvailable),
	"date_listed":    literalExtra(dcat.DCAvailable),

	"update_frequency": (*Producer).updateFrequency,
	"unique_id":        literalExtra(dcat.DCIdentifier),

	"geospatial_coverage":   literalExtra(dcat.DCSpatial),
	"geographic_coverage":   literalExtra(dcat.DCSpatial),
	"geographical_coverage": literalExtra(dcat.DCSpatial),
	"temporal_coverage":     literalExtra(dcat.DCTemporal),

	"precision":                literalExtra(dcat.DCATGranularity),
	"granularity":              literalExtra(dcat.DCATGranularity),
	"temporal_granularity":     literalExtra(dcat.DCATGranularity),
	"geospatial_granularity":   literalExtra(dcat.DCATGranularity),
	"geographic_granularity":   literalExtra(dcat.DCATGranularity),
	"geographical_granularity": literalExtra(dcat.DCATGranularity),

	"date_released": dateExtra(dcat.DCIssued),
	"date_modified": dateExtra(dcat.DCModified),
	"date_updated":  dateExtra(dcat.DCModified),

	"agency":     (*Producer).agency,
	"department": (*Producer).agency,

	"import_source":      literalExtra(dcat.DCSource),
	"external_reference": literalExtra(dcat.SKOSNotation),
	"categories":         (*Producer).categories,
}

func (p *Producer) processExtra(g *rdf.Graph, subject quad.Value, key string, raw any) {
	value, ok := effectiveValue(raw)
	if !ok {
		return
	}
	for _, ep := range extraPrefixes {
		if strings.HasPrefix(key, ep.prefix) {
			ep.handle(p, g, subject, key, value)
			return
		}
	}
	if handle, ok := extraKeys[key]; ok {
		handle(p, g, subject, key, value)
		return
	}
	p.relation(g, subject, key, value)
}

func literalExtra(predicate string) extraHandler {
	return func(_ *Producer, g *rdf.Graph, subject quad.Value, _ string, value any) {
		g.Add(subject, dcat.IRI(predicate), literalOf(value))
	}
}

func dateExtra(predicate string) extraHandler {
	return func(_ *Producer, g *rdf.Graph, subject quad.Value, _ string, value any) {
		g.Add(subject, dcat.IRI(predicate), ParseDate(valueText(value)))
	}
}

func (p *Producer) tripleCount(g *rdf.Graph, subject quad.Value, key string, value any) {
	n, ok := intOf(value)
	if !ok {
		p.logger.Debug("Skipping non-integer triple count", "key", key, "value", value)
		return
	}
	p.markVoid(g, subject)
	g.Add(subject, dcat.IRI(dcat.VOIDTriples), integerLiteral(n))
}

func (p *Producer) licenseLink(g *rdf.Graph, subject quad.Value, _ string, value any) {
	g.Add(subject, dcat.IRI(dcat.DCRights), quad.IRI(valueText(value)))
}

func (p *Producer) updateFrequency(g *rdf.Graph, subject quad.Value, _ string, value any) {
	freq := rdf.NewBlank()
	g.Add(subject, dcat.IRI(dcat.DCAccrualPeriodicity), freq)
	g.Add(freq, dcat.IRI(dcat.RDFValue), literalOf(value))
	g.Add(freq, p.reg.Label, literalOf(value))
}

func (p *Producer) agency(g *rdf.Graph, subject quad.Value, _ string, value any) {
	dept := rdf.NewBlank()
	g.Add(subject, dcat.IRI(dcat.DCSource), dept)
	g.Add(dept, p.reg.Label, literalOf(value))
}

func (p *Producer) categories(g *rdf.Graph, subject quad.Value, _ string, value any) {
	for _, cat := range listOf(value) {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		g.Add(subject, dcat.IRI(dcat.DCATTheme), dcat.Literal(cat))
	}
}

// relation keeps an unmodelled extra as a dc:relation node labelled with
// its key.
func (p *Producer) relation(g *rdf.Graph, subject quad.Value, key string, value any) {
	extra := rdf.NewBlank()
	g.Add(subject, dcat.IRI(dcat.DCRelation), extra)
	g.Add(extra, dcat.IRI(dcat.RDFValue), literalOf(value))
	g.Add(extra, p.reg.Label, dcat.Literal(key))
}

func (p *Producer) linkset(g *rdf.Graph, subject quad.Value, key string, value any) {
	name := strings.TrimPrefix(key, "links:")
	target := p.resolveTarget(name)
	if target == nil {
		p.logger.Debug("Skipping linkset with unresolved target", "target", name)
		return
	}
	n, ok := intOf(value)
	if !ok {
		p.logger.Debug("Skipping linkset with non-integer count", "target", name, "value", value)
		return
	}
	ls := rdf.NewBlank()
	g.Add(subject, dcat.IRI(dcat.VOIDSubset), ls)
	g.Add(ls, p.reg.Type, dcat.IRI(dcat.ClassLinkset))
	g.Add(ls, dcat.IRI(dcat.VOIDSubjectTarget), subject)
	g.Add(ls, dcat.IRI(dcat.VOIDObjectTarget), target)
	g.Add(ls, dcat.IRI(dcat.VOIDTriples), integerLiteral(n))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
