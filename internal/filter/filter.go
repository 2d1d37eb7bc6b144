// Package filter holds the pure predicates that decide whether a procurement
// record is worth keeping: keyword relevance over the notice description and
// an optional region match over the issuing organization.
package filter

import (
	"strings"

	"github.com/govdata-br/pncp-watcher/internal/pncp"
)

// Keywords matches records whose description contains any configured term,
// case-insensitively.
type Keywords struct {
	terms []string
}

// NewKeywords normalizes and deduplicates the configured keyword list.
func NewKeywords(terms []string) Keywords {
	return Keywords{terms: normalizeTerms(terms)}
}

// Match reports whether any keyword is a substring of the description.
func (k Keywords) Match(description string) bool {
	lowered := strings.ToLower(description)
	for _, term := range k.terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// Empty reports whether no keywords are configured.
func (k Keywords) Empty() bool { return len(k.terms) == 0 }

// Region matches records that belong to the configured region by tax-ID
// prefix, by a delimited state abbreviation in the organization name, or by
// region/city names in the organization name or description.
type Region struct {
	cnpjPrefix   string
	abbreviation string
	names        []string // folded
	cities       []string // folded
}

// RegionConfig carries the data-driven region definition.
type RegionConfig struct {
	CNPJPrefix   string
	Abbreviation string
	Names        []string
	Cities       []string
}

// NewRegion builds the region predicate. Name and city terms are folded so
// matching is accent-insensitive in both directions.
func NewRegion(cfg RegionConfig) Region {
	return Region{
		cnpjPrefix:   cfg.CNPJPrefix,
		abbreviation: strings.ToLower(strings.TrimSpace(cfg.Abbreviation)),
		names:        foldTerms(cfg.Names),
		cities:       foldTerms(cfg.Cities),
	}
}

// Empty reports whether no region criteria are configured at all.
func (r Region) Empty() bool {
	return r.cnpjPrefix == "" && r.abbreviation == "" && len(r.names) == 0 && len(r.cities) == 0
}

// Match reports whether the record belongs to the region.
func (r Region) Match(rec pncp.Record) bool {
	if r.cnpjPrefix != "" && strings.HasPrefix(rec.OrganizationCNPJ, r.cnpjPrefix) {
		return true
	}

	orgName := strings.ToLower(rec.OrganizationName)
	if r.abbreviation != "" && containsToken(orgName, r.abbreviation) {
		return true
	}

	orgFolded := Fold(orgName)
	descFolded := Fold(strings.ToLower(rec.Description))
	for _, name := range r.names {
		if strings.Contains(orgFolded, name) || strings.Contains(descFolded, name) {
			return true
		}
	}
	for _, city := range r.cities {
		if strings.Contains(orgFolded, city) || strings.Contains(descFolded, city) {
			return true
		}
	}
	return false
}

// containsToken reports whether token appears in text bounded by a space,
// comma, or period on both sides. Requiring a delimiter on both sides keeps
// "praça" from matching the abbreviation "pr"; the padding makes the start
// and end of the string count as boundaries.
func containsToken(text, token string) bool {
	padded := " " + text + " "
	for _, lead := range []string{" ", ",", "."} {
		for _, trail := range []string{" ", ",", "."} {
			if strings.Contains(padded, lead+token+trail) {
				return true
			}
		}
	}
	return false
}

// Keep applies the combined retention rule: the description must match the
// keywords and, when a region is configured, the record must also match it.
func Keep(rec pncp.Record, keywords Keywords, region Region) bool {
	if !keywords.Match(rec.Description) {
		return false
	}
	if region.Empty() {
		return true
	}
	return region.Match(rec)
}

// Apply filters records through Keep, preserving order.
func Apply(records []pncp.Record, keywords Keywords, region Region) []pncp.Record {
	var kept []pncp.Record
	for _, rec := range records {
		if Keep(rec, keywords, region) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func normalizeTerms(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, term := range in {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

func foldTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, term := range normalizeTerms(in) {
		out = append(out, Fold(term))
	}
	return out
}
