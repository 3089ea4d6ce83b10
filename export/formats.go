package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// DefaultFormat is served when the client expresses no usable preference.
const DefaultFormat = FormatNTriples

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// mediaTypes maps accepted media types, including common aliases, to formats.
var mediaTypes = map[string]Format{
	"text/turtle":           FormatTurtle,
	"application/x-turtle":  FormatTurtle,
	"application/n-triples": FormatNTriples,
	"text/plain":            FormatNTriples,
	"application/ld+json":   FormatJSONLD,
	"application/json":      FormatJSONLD,
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ListFormats returns all formats sorted by name.
func ListFormats() []FormatInfo {
	out := make([]FormatInfo, 0, len(FormatRegistry))
	for _, info := range FormatRegistry {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseFormat resolves a format name, file extension or media type.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, info := range FormatRegistry {
		if s == string(info.Name) || s == info.MIMEType || "."+s == info.Extension || s == info.Extension {
			return info.Name, nil
		}
	}
	if f, ok := mediaTypes[s]; ok {
		return f, nil
	}
	switch s {
	case "ttl":
		return FormatTurtle, nil
	case "nt", "n-triples":
		return FormatNTriples, nil
	case "json-ld", "json":
		return FormatJSONLD, nil
	}
	return "", fmt.Errorf("unsupported format: %q", s)
}

// Negotiate picks the format best matching an Accept header. Entries are
// ranked by q value, ties going to the earlier entry. Wildcards and
// unsupported types fall back to DefaultFormat.
func Negotiate(accept string) Format {
	best := DefaultFormat
	bestQ := 0.0
	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(fields[0]))
		f, ok := mediaTypes[mediaType]
		if !ok {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			k, v, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || strings.TrimSpace(k) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = parsed
			}
		}
		if q > bestQ {
			best, bestQ = f, q
		}
	}
	return best
}
