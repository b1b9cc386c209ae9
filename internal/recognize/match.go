package recognize

import "strings"

// matchTerms checks engine output for each target term by exact
// substring containment. Whitespace is stripped first: OCR engines
// often insert spaces between CJK glyphs, which would otherwise mask
// a match. No fuzzy matching.
func matchTerms(text string, terms []string, kind Kind, variantName string) []Hit {
	stripped := stripSpace(text)
	var hits []Hit
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(stripped, stripSpace(term)) {
			hits = append(hits, Hit{
				Term:       term,
				Confidence: 1.0,
				Kind:       kind,
				Variant:    variantName,
				Raw:        text,
			})
		}
	}
	return hits
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
