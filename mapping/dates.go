package mapping

import (
	"strings"
	"time"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

// dateLayout pairs a parse layout with the literal it produces.
type dateLayout struct {
	layout   string
	datatype string
	format   string
}

// dateLayouts are tried in order; the first successful parse wins. Day
// first layouts follow the UK convention used by the catalog's publishers.
var dateLayouts = []dateLayout{
	{layout: "2006", datatype: dcat.XSDGYear, format: "2006"},
	{layout: "2006-1", datatype: dcat.XSDGYearMonth, format: "2006-01"},
	{layout: "2006-1-2", datatype: dcat.XSDDate, format: "2006-01-02"},
	{layout: "2/1/2006", datatype: dcat.XSDDate, format: "2006-01-02"},
	{layout: "2/1/06", datatype: dcat.XSDDate, format: "2006-01-02"},
	{layout: "2/1/2006 15:04", datatype: dcat.XSDDateTime, format: "2006-01-02T15:04:05"},
	{layout: "2/1/06 15:04", datatype: dcat.XSDDateTime, format: "2006-01-02T15:04:05"},
}

// ParseDate converts free text into the most precise typed literal it
// matches. Text matching no layout is returned as a plain literal holding
// the original text.
func ParseDate(text string) quad.Value {
	trimmed := strings.TrimSpace(text)
	for _, dl := range dateLayouts {
		t, err := time.Parse(dl.layout, trimmed)
		if err != nil {
			continue
		}
		return dcat.Typed(t.Format(dl.format), dl.datatype)
	}
	return dcat.Literal(text)
}
