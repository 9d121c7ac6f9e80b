package schema

import (
	"fmt"
	"strings"

	"github.com/waypointhq/waypoint"
)

// Prompt templates. Extraction templates are keyed by (domain,
// granularity); inference and re-extraction templates by domain. All
// templates instruct the model to answer with a single flat JSON object
// restricted to the domain's schema, where every populated field is
// accompanied by <field>_evidence (a verbatim source quote) and
// <field>_confidence (a number in [0,1]).

const outputRules = `Return a single JSON object and nothing else.
Only use the field names listed above; omit fields you cannot support.
For every populated field also set "<field>_evidence" to the exact text
fragment from the content that supports it, and "<field>_confidence" to
a number between 0 and 1. Use null for unknown scalars and [] for
unknown lists. Do not invent values.`

const genericExtractionPrompt = `You are extracting structured data from a travel-related web page.

Fields: name, description, location, address, city, country, price_usd,
rating, review_count, images, categories, phone, website, opening_hours, tips.

` + outputRules

const genericInferencePrompt = `Some fields could not be extracted directly from the page.
Using the already-extracted record and the full page content below, infer
or derive ONLY the missing fields listed. Return null for anything that
truly cannot be recovered. Never change fields that already have values.

` + outputRules

const genericReextractionPrompt = `Parse the following web-search answer into the missing fields listed.
Output rules: plain text values only, no markup and no emoji; numeric
values bare (no thousands separators); currency amounts tagged with an
explicit ISO currency code (e.g. "19000 USD"); arrays as short phrases.

` + outputRules

// extractionPrompts builds the (domain, granularity) template table.
func extractionPrompts() map[promptKey]string {
	table := make(map[promptKey]string)
	for _, s := range domainSchemas() {
		fields := strings.Join(append(append([]string{}, s.Generic...), s.Specific...), ", ")

		specific := fmt.Sprintf(`You are extracting structured data about a single %s from a web page.

Fields: %s.

Extract values for exactly this one item. Ignore similar items shown in
sidebars, recommendations, or "related" sections.

%s`, domainNoun(s.Domain), fields, outputRules)

		general := fmt.Sprintf(`You are extracting structured data from a guide or listing page about %ss.

Fields: %s.

The page describes several items. Extract values that hold for the page
as a whole (e.g. the area covered, typical prices); leave item-specific
fields null.

%s`, domainNoun(s.Domain), fields, outputRules)

		table[promptKey{s.Domain, waypoint.GranularitySpecific}] = specific
		table[promptKey{s.Domain, waypoint.GranularityGeneral}] = general
	}
	return table
}

// inferencePrompts builds the per-domain escalation instruction sets.
// Domains without a specialized template share genericInferencePrompt.
func inferencePrompts() map[waypoint.Domain]string {
	return map[waypoint.Domain]string{
		waypoint.DomainProperty: `Some property fields could not be extracted directly.
Using the record and the full listing content, infer ONLY the missing
fields listed. Derive bedroom/bathroom counts from floor plans or room
lists; derive area from dimensions; for land or plot listings, room and
parking counts are 0. Return null for anything truly unrecoverable.
Never change fields that already have values.

` + outputRules,
		waypoint.DomainRestaurant: `Some restaurant fields could not be extracted directly.
Using the record and the full page content, infer ONLY the missing
fields listed. Cuisine may be derived from menu items; price tier from
dish prices. Return null for anything truly unrecoverable. Never change
fields that already have values.

` + outputRules,
	}
}

// reextractionPrompts builds the per-domain search-answer parsers.
func reextractionPrompts() map[waypoint.Domain]string {
	return map[waypoint.Domain]string{
		waypoint.DomainProperty: `Parse this web-search answer about a property listing into the missing
fields listed. ` + genericReextractionPrompt,
	}
}

func domainNoun(d waypoint.Domain) string {
	switch d {
	case waypoint.DomainProperty:
		return "property listing"
	case waypoint.DomainTour:
		return "tour"
	case waypoint.DomainRestaurant:
		return "restaurant"
	case waypoint.DomainTransport:
		return "transportation route"
	case waypoint.DomainTip:
		return "travel tip"
	}
	return "page"
}
