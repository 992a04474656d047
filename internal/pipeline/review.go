package pipeline

import "strings"

// parseReview extracts the reviewed analyses from the review response. When
// the documentation label is missing the originals are returned unchanged,
// and an empty reviewed part falls back to its original.
func parseReview(response, code, doc string) (string, string) {
	idx := strings.Index(response, reviewDocLabel)
	if idx < 0 {
		return code, doc
	}

	reviewedCode := strings.TrimSpace(response[:idx])
	if i := strings.Index(reviewedCode, reviewCodeLabel); i >= 0 {
		reviewedCode = strings.TrimSpace(reviewedCode[i+len(reviewCodeLabel):])
	}
	reviewedDoc := strings.TrimSpace(response[idx+len(reviewDocLabel):])

	if reviewedCode == "" {
		reviewedCode = code
	}
	if reviewedDoc == "" {
		reviewedDoc = doc
	}
	return reviewedCode, reviewedDoc
}
