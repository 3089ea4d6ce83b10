package mapping_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/mapping"
	"github.com/c360studio/catalogrdf/rdf"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

var (
	typeIRI  = dcat.IRI(dcat.RDFType)
	labelIRI = dcat.IRI(dcat.RDFSLabel)
)

func str(s string) *string { return &s }

func baseRecord() *catalog.Record {
	return &catalog.Record{
		ID:         "3b2f1a4e-8c1d-4e5f-9a6b-7c8d9e0f1a2b",
		Name:       "census-2011",
		CatalogURL: "http://catalog.example.org/dataset/census-2011",
	}
}

func fullRecord() *catalog.Record {
	rating := 4.5
	rec := baseRecord()
	rec.Title = str("Census 2011")
	rec.URL = str("  http://census.example.org/  ")
	rec.Notes = str("Population counts")
	rec.LicenseID = str("cc-by")
	rec.Author = str("Office for Statistics")
	rec.AuthorEmail = str("stats@example.org")
	rec.Maintainer = str("Data Team")
	rec.Tags = []string{"population", "census"}
	rec.RatingsAverage = &rating
	rec.Resources = []catalog.Resource{
		{URL: str("http://example.org/sparql"), Format: str("api/sparql")},
		{URL: str("http://example.org/census.csv"), Format: str("CSV"), Description: str("Tables")},
	}
	rec.Extras = map[string]any{
		"categories":    "People, Society",
		"date_released": "17/05/2011",
		"custom_field":  "kept",
	}
	return rec
}

func TestProduceSubject(t *testing.T) {
	p := mapping.NewProducer(nil)

	t.Run("catalog url", func(t *testing.T) {
		g := p.Produce(baseRecord())
		assert.Equal(t, quad.IRI("http://catalog.example.org/dataset/census-2011"), g.ID())
		assert.True(t, g.Contains(g.ID(), typeIRI, dcat.IRI(dcat.ClassDataset)))
	})

	t.Run("blank when missing", func(t *testing.T) {
		rec := baseRecord()
		rec.CatalogURL = ""

		a := p.Produce(rec)
		b := p.Produce(rec)

		_, blank := a.ID().(quad.BNode)
		require.True(t, blank)
		assert.NotEqual(t, a.ID(), b.ID())
		assert.True(t, a.Contains(a.ID(), typeIRI, dcat.IRI(dcat.ClassDataset)))
	})
}

func TestProduceCoreTriples(t *testing.T) {
	g := mapping.NewProducer(dcat.NewRegistry("http://licenses.example.org/")).Produce(fullRecord())
	s := g.ID()

	assert.True(t, g.Contains(s, dcat.IRI(dcat.OWLSameAs), quad.IRI("urn:uuid:3b2f1a4e-8c1d-4e5f-9a6b-7c8d9e0f1a2b")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.DCIdentifier), quad.String("census-2011")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.FOAFHomepage), quad.IRI("http://census.example.org/")))
	assert.True(t, g.Contains(s, labelIRI, quad.String("Census 2011")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.DCTitle), quad.String("Census 2011")))
	assert.False(t, g.Contains(s, labelIRI, quad.String("census-2011")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.DCDescription), quad.String("Population counts")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.DCRights), quad.IRI("http://licenses.example.org/cc-by")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.DCATKeyword), quad.String("population")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.DCATKeyword), quad.String("census")))
	assert.True(t, g.Contains(s, dcat.IRI(dcat.REVRating), dcat.Typed("4.5", dcat.XSDFloat)))
}

func TestProduceLabelFallsBackToName(t *testing.T) {
	g := mapping.NewProducer(nil).Produce(baseRecord())

	assert.True(t, g.Contains(g.ID(), labelIRI, quad.String("census-2011")))
	assert.Empty(t, g.Match(g.ID(), dcat.IRI(dcat.DCTitle), nil))
	assert.Empty(t, g.Match(g.ID(), dcat.IRI(dcat.FOAFHomepage), nil))
	assert.Empty(t, g.Match(g.ID(), dcat.IRI(dcat.DCRights), nil))
	assert.Empty(t, g.Match(g.ID(), dcat.IRI(dcat.REVRating), nil))
}

func TestProduceBlankHomepageIgnored(t *testing.T) {
	rec := baseRecord()
	rec.URL = str("   ")
	g := mapping.NewProducer(nil).Produce(rec)

	assert.Empty(t, g.Match(g.ID(), dcat.IRI(dcat.FOAFHomepage), nil))
}

func TestProducePeople(t *testing.T) {
	g := mapping.NewProducer(nil).Produce(fullRecord())
	s := g.ID()

	creators := g.Match(s, dcat.IRI(dcat.DCCreator), nil)
	require.Len(t, creators, 1)
	author := creators[0].Object
	assert.True(t, g.Contains(author, dcat.IRI(dcat.FOAFName), quad.String("Office for Statistics")))
	assert.True(t, g.Contains(author, dcat.IRI(dcat.FOAFMbox), quad.IRI("mailto:stats@example.org")))

	contributors := g.Match(s, dcat.IRI(dcat.DCContributor), nil)
	require.Len(t, contributors, 1)
	maintainer := contributors[0].Object
	assert.NotEqual(t, author, maintainer)
	assert.True(t, g.Contains(maintainer, dcat.IRI(dcat.FOAFName), quad.String("Data Team")))
	assert.Empty(t, g.Match(maintainer, dcat.IRI(dcat.FOAFMbox), nil))
}

func TestProduceEmailOnlyAuthor(t *testing.T) {
	rec := baseRecord()
	rec.AuthorEmail = str("someone@example.org")
	g := mapping.NewProducer(nil).Produce(rec)

	creators := g.Match(g.ID(), dcat.IRI(dcat.DCCreator), nil)
	require.Len(t, creators, 1)
	assert.Empty(t, g.Match(creators[0].Object, dcat.IRI(dcat.FOAFName), nil))
	assert.Len(t, g.Match(creators[0].Object, dcat.IRI(dcat.FOAFMbox), nil), 1)
}

func TestProduceIsStructurallyStable(t *testing.T) {
	p := mapping.NewProducer(nil)
	a := p.Produce(fullRecord())
	b := p.Produce(fullRecord())

	assert.Equal(t, a.Len(), b.Len())
	assert.Equal(t, shape(a), shape(b))
}

func TestProduceRelationshipsAreInert(t *testing.T) {
	rec := baseRecord()
	without := mapping.NewProducer(nil).Produce(rec).Len()

	rec.Relationships = []any{map[string]any{"type": "child_of", "object": "other"}}
	assert.Equal(t, without, mapping.NewProducer(nil).Produce(rec).Len())
}

func TestProduceNTriples(t *testing.T) {
	g := mapping.NewProducer(nil).Produce(fullRecord())
	out, err := g.NTriples()
	require.NoError(t, err)

	assert.Contains(t, out, "<http://catalog.example.org/dataset/census-2011> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/ns/dcat#Dataset> .")
	assert.Contains(t, out, `"4.5"^^<http://www.w3.org/2001/XMLSchema#float>`)
	assert.Equal(t, g.Len(), strings.Count(out, " .\n"))
}

// shape renders g with blank nodes erased so graphs that differ only in
// blank labels compare equal.
func shape(g *rdf.Graph) []string {
	term := func(v quad.Value) string {
		if _, ok := v.(quad.BNode); ok {
			return "_"
		}
		return v.String()
	}
	lines := make([]string, 0, g.Len())
	for _, q := range g.Triples() {
		lines = append(lines, term(q.Subject)+" "+term(q.Predicate)+" "+term(q.Object))
	}
	sort.Strings(lines)
	return lines
}
