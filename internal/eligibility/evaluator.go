// Package eligibility reconciles the documents a farmer holds against the
// documents a scheme requires.
package eligibility

import (
	"time"

	"kisansarathi/pkg/types"
)

// Evaluate computes which required documents are held and which are missing.
// Matching is exact and case-sensitive. Both result lists follow the order of
// required with duplicates collapsed. An empty required set is always
// eligible.
func Evaluate(required, available []string) types.EligibilityResult {
	have := make(map[string]struct{}, len(available))
	for _, docType := range available {
		have[docType] = struct{}{}
	}

	result := types.EligibilityResult{
		AvailableDocuments: make([]string, 0, len(required)),
		MissingDocuments:   make([]string, 0),
	}

	seen := make(map[string]struct{}, len(required))
	for _, docType := range required {
		if _, dup := seen[docType]; dup {
			continue
		}
		seen[docType] = struct{}{}

		if _, ok := have[docType]; ok {
			result.AvailableDocuments = append(result.AvailableDocuments, docType)
			continue
		}
		result.MissingDocuments = append(result.MissingDocuments, docType)
	}

	result.IsEligible = len(result.MissingDocuments) == 0
	return result
}

// IsExpired reports whether a document with the given expiry is no longer
// valid at now. A nil expiry never expires.
func IsExpired(expiry *time.Time, now time.Time) bool {
	return expiry != nil && expiry.Before(now)
}

// AvailableDocTypes returns the doc types of every document still valid at
// now, in input order.
func AvailableDocTypes(docs []types.DocumentRecord, now time.Time) []string {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		if IsExpired(doc.ExpiryDate, now) {
			continue
		}
		out = append(out, doc.DocType)
	}
	return out
}

// EvaluateDocuments drops expired documents before evaluating.
func EvaluateDocuments(required []string, docs []types.DocumentRecord, now time.Time) types.EligibilityResult {
	return Evaluate(required, AvailableDocTypes(docs, now))
}
