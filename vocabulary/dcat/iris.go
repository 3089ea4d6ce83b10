package dcat

// Namespace IRIs for the vocabularies used by the catalog mapping.
const (
	NamespaceDCAT  = "http://www.w3.org/ns/dcat#"
	NamespaceDC    = "http://purl.org/dc/terms/"
	NamespaceFOAF  = "http://xmlns.com/foaf/0.1/"
	NamespaceOWL   = "http://www.w3.org/2002/07/owl#"
	NamespaceRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS  = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceXSD   = "http://www.w3.org/2001/XMLSchema#"
	NamespaceVOID  = "http://rdfs.org/ns/void#"
	NamespaceSKOS  = "http://www.w3.org/2004/02/skos/core#"
	NamespaceREV   = "http://purl.org/stuff/rev#"
	NamespaceOPMV  = "http://purl.org/net/opmv/ns#"
	NamespaceSCOVO = "http://purl.org/NET/scovo#"

	// NamespaceUUID prefixes record ids to form stable cross-references.
	NamespaceUUID = "urn:uuid:"

	// DefaultLicenseNamespace is where license ids are resolved when no
	// other namespace is configured.
	DefaultLicenseNamespace = "http://www.opendefinition.org/licenses/"
)

// Class IRIs.
const (
	// ClassDataset is the DCAT dataset class every record is typed with.
	ClassDataset = NamespaceDCAT + "Dataset"

	// ClassDistribution types generic resource access points.
	ClassDistribution = NamespaceDCAT + "Distribution"

	// ClassVoidDataset marks records that publish RDF data.
	ClassVoidDataset = NamespaceVOID + "Dataset"

	// ClassLinkset describes links between two VoID datasets.
	ClassLinkset = NamespaceVOID + "Linkset"

	// ClassMediaType types format descriptor nodes.
	ClassMediaType = NamespaceDC + "IMT"
)

// Predicate IRIs.
const (
	RDFType   = NamespaceRDF + "type"
	RDFValue  = NamespaceRDF + "value"
	RDFSLabel = NamespaceRDFS + "label"
	OWLSameAs = NamespaceOWL + "sameAs"

	DCIdentifier         = NamespaceDC + "identifier"
	DCTitle              = NamespaceDC + "title"
	DCDescription        = NamespaceDC + "description"
	DCRights             = NamespaceDC + "rights"
	DCCreator            = NamespaceDC + "creator"
	DCContributor        = NamespaceDC + "contributor"
	DCFormat             = NamespaceDC + "format"
	DCCreated            = NamespaceDC + "created"
	DCAvailable          = NamespaceDC + "available"
	DCIssued             = NamespaceDC + "issued"
	DCModified           = NamespaceDC + "modified"
	DCAccrualPeriodicity = NamespaceDC + "accrualPeriodicity"
	DCSpatial            = NamespaceDC + "spatial"
	DCTemporal           = NamespaceDC + "temporal"
	DCSource             = NamespaceDC + "source"
	DCRelation           = NamespaceDC + "relation"

	DCATKeyword      = NamespaceDCAT + "keyword"
	DCATTheme        = NamespaceDCAT + "theme"
	DCATDistribution = NamespaceDCAT + "distribution"
	DCATAccessURL    = NamespaceDCAT + "accessURL"
	DCATGranularity  = NamespaceDCAT + "granularity"

	FOAFHomepage = NamespaceFOAF + "homepage"
	FOAFName     = NamespaceFOAF + "name"
	FOAFMbox     = NamespaceFOAF + "mbox"

	VOIDSparqlEndpoint  = NamespaceVOID + "sparqlEndpoint"
	VOIDVocabulary      = NamespaceVOID + "vocabulary"
	VOIDDataDump        = NamespaceVOID + "dataDump"
	VOIDExampleResource = NamespaceVOID + "exampleResource"
	VOIDSubset          = NamespaceVOID + "subset"
	VOIDSubjectTarget   = NamespaceVOID + "subjectTarget"
	VOIDObjectTarget    = NamespaceVOID + "objectTarget"
	VOIDTriples         = NamespaceVOID + "triples"

	SKOSNotation = NamespaceSKOS + "notation"
	REVRating    = NamespaceREV + "rating"
)

// XML Schema datatype IRIs used for typed literals.
const (
	XSDInteger    = NamespaceXSD + "integer"
	XSDFloat      = NamespaceXSD + "float"
	XSDDouble     = NamespaceXSD + "double"
	XSDBoolean    = NamespaceXSD + "boolean"
	XSDGYear      = NamespaceXSD + "gYear"
	XSDGYearMonth = NamespaceXSD + "gYearMonth"
	XSDDate       = NamespaceXSD + "date"
	XSDDateTime   = NamespaceXSD + "dateTime"
)
