package triplestore

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/rdf"
)

// Kind names the update statements the synchronizer submits.
type Kind string

// Statement kinds, also used as metric labels.
const (
	KindInsert Kind = "insert"
	KindDelete Kind = "delete"
)

// InsertStatement wraps the graph's N-Triples in an INSERT DATA update.
func InsertStatement(g *rdf.Graph) (string, error) {
	payload, err := g.NTriples()
	if err != nil {
		return "", fmt.Errorf("serialize graph: %w", err)
	}
	return "INSERT DATA { " + payload + " }", nil
}

// DeletePattern returns one "<s> ?pN ?oN" clause per distinct subject of
// g, joined into a single group pattern. Blank subjects are written as
// <label>, an IRI reference, never as a _: blank node.
func DeletePattern(g *rdf.Graph) string {
	subjects := g.Subjects()
	clauses := make([]string, 0, len(subjects))
	for n, s := range subjects {
		clauses = append(clauses, fmt.Sprintf("%s ?p%d ?o%d", subjectRef(s), n, n))
	}
	return strings.Join(clauses, " .\n")
}

func subjectRef(s quad.Value) string {
	if b, ok := s.(quad.BNode); ok {
		return "<" + string(b) + ">"
	}
	return s.String()
}

// DeleteStatement removes every triple of every subject of g, whatever
// its predicate and object.
func DeleteStatement(g *rdf.Graph) string {
	return "DELETE DATA { " + DeletePattern(g) + " }"
}
