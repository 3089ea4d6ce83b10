// Package dcat provides the vocabulary terms used to describe catalog
// records as linked data.
//
// The terms come from several published vocabularies:
//   - DCAT for datasets, distributions, keywords and themes
//   - Dublin Core terms for titles, rights, dates and provenance
//   - FOAF for people (authors, maintainers) and homepages
//   - VoID for RDF datasets, endpoints, dumps and linksets
//   - SKOS, RDF, RDFS, OWL and XML Schema datatypes
//   - the Review vocabulary for ratings
//
// # Registry
//
// Namespaces and IRIs are plain constants in iris.go. Callers that need
// a configured view (the license namespace differs between deployments)
// build one Registry at startup with NewRegistry and share it; a Registry
// is never mutated after construction.
package dcat
