package destination

import "strings"

// subregions are the Indian states; searches for them need a country qualifier.
var subregions = map[string]struct{}{
	"andhra pradesh":    {},
	"arunachal pradesh": {},
	"assam":             {},
	"bihar":             {},
	"chhattisgarh":      {},
	"goa":               {},
	"gujarat":           {},
	"haryana":           {},
	"himachal pradesh":  {},
	"jharkhand":         {},
	"karnataka":         {},
	"kerala":            {},
	"madhya pradesh":    {},
	"maharashtra":       {},
	"manipur":           {},
	"meghalaya":         {},
	"mizoram":           {},
	"nagaland":          {},
	"odisha":            {},
	"punjab":            {},
	"rajasthan":         {},
	"sikkim":            {},
	"tamil nadu":        {},
	"telangana":         {},
	"tripura":           {},
	"uttar pradesh":     {},
	"uttarakhand":       {},
	"west bengal":       {},
}

// IsSubregion reports whether name is a known sub-national region.
func IsSubregion(name string) bool {
	_, ok := subregions[strings.ToLower(name)]
	return ok
}

const (
	regionQualifier  = `"India"`
	attractionsTerms = "tourist attractions landmarks monuments"
	generalTerms     = "cityscape architecture street life culture"
)

// BuildPhotoQuery composes the photo provider search string.
// The result is not escaped; the client encodes it.
func BuildPhotoQuery(destination string, intent Intent, isSubregion bool) string {
	parts := []string{`"` + destination + `"`}
	if isSubregion {
		parts = append(parts, regionQualifier)
	}

	switch {
	case intent == IntentAttractions && isSubregion:
		parts = append(parts, attractionsTerms, "temples")
	case intent == IntentAttractions:
		parts = append(parts, attractionsTerms, "city")
	case isSubregion:
		parts = append(parts, generalTerms)
	default:
		parts = append(parts, generalTerms, "city")
	}

	return strings.Join(parts, " ")
}
