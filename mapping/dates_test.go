package mapping_test

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"

	"github.com/c360studio/catalogrdf/mapping"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want quad.Value
	}{
		{"year", "2020", dcat.Typed("2020", dcat.XSDGYear)},
		{"year month", "2020-05", dcat.Typed("2020-05", dcat.XSDGYearMonth)},
		{"iso date", "2020-05-17", dcat.Typed("2020-05-17", dcat.XSDDate)},
		{"day month year", "17/05/2020", dcat.Typed("2020-05-17", dcat.XSDDate)},
		{"short year", "17/05/20", dcat.Typed("2020-05-17", dcat.XSDDate)},
		{"single digits", "7/5/2020", dcat.Typed("2020-05-07", dcat.XSDDate)},
		{"date time", "17/05/2020 09:30", dcat.Typed("2020-05-17T09:30:00", dcat.XSDDateTime)},
		{"short year date time", "17/05/20 09:30", dcat.Typed("2020-05-17T09:30:00", dcat.XSDDateTime)},
		{"surrounding space", " 2020 ", dcat.Typed("2020", dcat.XSDGYear)},
		{"bogus", "bogus", quad.String("bogus")},
		{"month first", "05/17/2020", quad.String("05/17/2020")},
		{"empty", "", quad.String("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapping.ParseDate(tt.text))
		})
	}
}
