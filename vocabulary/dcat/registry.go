package dcat

import (
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/google/uuid"
)

// Registry is the configured, read-only view of the catalog vocabulary.
// Build it once with NewRegistry and share the pointer.
type Registry struct {
	licenseNamespace string

	// Type and Label are resolved through the cayley voc prefixes so the
	// producer and any cayley-based consumer agree on the full IRIs.
	Type  quad.IRI
	Label quad.IRI

	// metaVocabularies maps the meta/* resource formats to the vocabulary
	// a dataset declares it uses.
	metaVocabularies map[string]quad.IRI
}

// NewRegistry creates a Registry resolving license ids under
// licenseNamespace. An empty namespace selects DefaultLicenseNamespace.
func NewRegistry(licenseNamespace string) *Registry {
	if licenseNamespace == "" {
		licenseNamespace = DefaultLicenseNamespace
	}
	return &Registry{
		licenseNamespace: licenseNamespace,
		Type:             quad.IRI(rdf.Type).Full(),
		Label:            quad.IRI(rdfs.Label).Full(),
		metaVocabularies: map[string]quad.IRI{
			"meta/rdf-schema": quad.IRI(NamespaceRDFS),
			"meta/void":       quad.IRI(NamespaceVOID),
			"meta/owl":        quad.IRI(NamespaceOWL),
		},
	}
}

// IRI wraps a vocabulary constant as a graph term.
func IRI(iri string) quad.IRI {
	return quad.IRI(iri)
}

// LicenseNamespace returns the namespace license ids resolve under.
func (r *Registry) LicenseNamespace() string {
	return r.licenseNamespace
}

// License resolves a license id to its term.
func (r *Registry) License(id string) quad.IRI {
	return quad.IRI(r.licenseNamespace + id)
}

// UUID returns the urn:uuid term for a record id. Ids that parse as UUIDs
// are normalised to their canonical lowercase form; anything else is used
// verbatim.
func (r *Registry) UUID(id string) quad.IRI {
	if u, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
		return quad.IRI(NamespaceUUID + u.String())
	}
	return quad.IRI(NamespaceUUID + id)
}

// MetaVocabulary returns the vocabulary declared by a meta/* resource
// format.
func (r *Registry) MetaVocabulary(format string) (quad.IRI, bool) {
	iri, ok := r.metaVocabularies[format]
	return iri, ok
}

// Literal creates a plain literal.
func Literal(value string) quad.String {
	return quad.String(value)
}

// Typed creates a literal with an XML Schema (or other) datatype.
func Typed(value, datatype string) quad.TypedString {
	return quad.TypedString{Value: quad.String(value), Type: quad.IRI(datatype)}
}
