package rdf_test

import (
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/catalogrdf/rdf"
)

var (
	subj  = quad.IRI("http://example.org/dataset/a")
	other = quad.IRI("http://example.org/dataset/b")
	label = quad.IRI("http://www.w3.org/2000/01/rdf-schema#label")
	title = quad.IRI("http://purl.org/dc/terms/title")
)

func TestNewBlankIsUnique(t *testing.T) {
	seen := make(map[quad.BNode]bool)
	for i := 0; i < 1000; i++ {
		b := rdf.NewBlank()
		require.False(t, seen[b], "blank identifier reused: %s", b)
		seen[b] = true
	}
}

func TestNewWithoutIDIsAnonymous(t *testing.T) {
	a := rdf.New(nil)
	b := rdf.New(nil)

	_, isBlank := a.ID().(quad.BNode)
	assert.True(t, isBlank)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestAddIsSetSemantics(t *testing.T) {
	g := rdf.New(subj)
	g.Add(subj, label, quad.String("A"))
	g.Add(subj, label, quad.String("A"))
	g.Add(subj, title, quad.String("A"))

	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Contains(subj, label, quad.String("A")))
	assert.False(t, g.Contains(subj, label, quad.String("B")))
}

func TestRemoveWildcards(t *testing.T) {
	g := rdf.New(subj)
	g.Add(subj, label, quad.String("A"))
	g.Add(subj, title, quad.String("A"))
	g.Add(other, label, quad.String("B"))

	assert.Equal(t, 2, g.Remove(nil, label, nil))
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Contains(subj, title, quad.String("A")))

	g.Add(other, label, quad.String("B"))
	assert.Equal(t, 2, g.Remove(nil, nil, nil))
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Triples())
}

func TestMergeKeepsIdentifier(t *testing.T) {
	g := rdf.New(subj)
	g.Add(subj, label, quad.String("A"))

	sub := rdf.New(nil)
	sub.Add(sub.ID(), label, quad.String("text/turtle"))
	sub.Add(subj, label, quad.String("A"))

	g.Merge(sub)

	assert.Equal(t, subj, g.ID())
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Contains(sub.ID(), label, quad.String("text/turtle")))
}

func TestSubjectsDistinct(t *testing.T) {
	g := rdf.New(subj)
	b := rdf.NewBlank()
	g.Add(subj, label, quad.String("A"))
	g.Add(b, label, quad.String("node"))
	g.Add(subj, title, quad.String("A"))
	g.Add(other, label, quad.String("B"))

	assert.Equal(t, []quad.Value{subj, b, other}, g.Subjects())
}

func TestMatch(t *testing.T) {
	g := rdf.New(subj)
	g.Add(subj, label, quad.String("A"))
	g.Add(subj, title, quad.String("A"))
	g.Add(other, label, quad.String("B"))

	assert.Len(t, g.Match(subj, nil, nil), 2)
	assert.Len(t, g.Match(nil, nil, quad.String("B")), 1)
	assert.Len(t, g.Match(nil, title, quad.String("B")), 0)
}

func TestNTriples(t *testing.T) {
	g := rdf.New(subj)
	g.Add(subj, label, quad.String("Line \"one\"\nline two"))
	g.Add(subj, title, quad.TypedString{Value: "2020", Type: "http://www.w3.org/2001/XMLSchema#gYear"})

	out, err := g.NTriples()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "<http://example.org/dataset/a> <http://www.w3.org/2000/01/rdf-schema#label> "))
	assert.Contains(t, lines[1], `"2020"^^<http://www.w3.org/2001/XMLSchema#gYear>`)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, " ."), "line not terminated: %q", line)
	}

	parsed, err := rdf.ReadNTriples(strings.NewReader(out), subj)
	require.NoError(t, err)
	assert.Equal(t, g.Len(), parsed.Len())
	assert.True(t, parsed.Contains(subj, label, quad.String("Line \"one\"\nline two")))
}
