package services

import (
	"strings"
)

// Role says which input a text stands for; thresholds differ per role.
type Role string

const (
	RoleJob    Role = "job"
	RoleResume Role = "resume"
)

// Verdict is the outcome of validating extracted text.
type Verdict int

const (
	Valid Verdict = iota
	TooShort
	LooksLikeErrorPage
	LooksLikeSearchResults
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case TooShort:
		return "too_short"
	case LooksLikeErrorPage:
		return "error_page"
	case LooksLikeSearchResults:
		return "search_results"
	default:
		return "unknown"
	}
}

const (
	MinJobTextChars    = 100
	MinResumeTextChars = 50
	// ShortPageChars bounds the texts on which marker phrases are trusted.
	ShortPageChars = 500
)

var (
	searchResultMarkers = []string{"search jobs"}
	errorPageMarkers    = []string{"page not found", "access denied"}
	// diagnosticPrefixes start every explanatory string the acquisition layer substitutes
	// for content it could not obtain.
	diagnosticPrefixes = []string{"error:", "error fetching", "error parsing", strings.ToLower(NonTextMarker)}
)

// Validate classifies text for the given role. Checks run in a fixed order so that
// length always wins over marker matches.
func Validate(text string, role Role) Verdict {
	length := RuneLen(text)

	if role == RoleResume {
		if length < MinResumeTextChars {
			return TooShort
		}
		if IsDiagnosticText(text) {
			return LooksLikeErrorPage
		}
		return Valid
	}

	if length < MinJobTextChars {
		return TooShort
	}
	if LooksLikeSearchPage(text) {
		return LooksLikeSearchResults
	}
	if IsDiagnosticText(text) || LooksLikeErrorPageText(text) {
		return LooksLikeErrorPage
	}
	return Valid
}

// LooksLikeSearchPage reports a short page carrying a search-results marker.
func LooksLikeSearchPage(text string) bool {
	return RuneLen(text) < ShortPageChars && ContainsSearchMarker(text)
}

// LooksLikeErrorPageText reports a short page carrying an error-page marker.
func LooksLikeErrorPageText(text string) bool {
	return RuneLen(text) < ShortPageChars && ContainsErrorMarker(text)
}

func ContainsSearchMarker(text string) bool {
	return containsAny(strings.ToLower(text), searchResultMarkers)
}

func ContainsErrorMarker(text string) bool {
	return containsAny(strings.ToLower(text), errorPageMarkers)
}

// IsDiagnosticText reports text that is one of the acquisition layer's own messages.
func IsDiagnosticText(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, prefix := range diagnosticPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// LooksUnextractable is the fetch-time gate: too little text, or any search/error marker
// anywhere in the page.
func LooksUnextractable(text string) bool {
	return RuneLen(text) < MinJobTextChars || ContainsSearchMarker(text) || ContainsErrorMarker(text)
}

func containsAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
