package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateJobLengthBoundary(t *testing.T) {
	assert.Equal(t, TooShort, Validate(strings.Repeat("a", 99), RoleJob))
	assert.Equal(t, Valid, Validate(strings.Repeat("a", 100), RoleJob))
	assert.Equal(t, TooShort, Validate(strings.Repeat("ü", 99), RoleJob))
}

func TestValidateResumeLengthBoundary(t *testing.T) {
	assert.Equal(t, TooShort, Validate(strings.Repeat("a", 49), RoleResume))
	assert.Equal(t, Valid, Validate(strings.Repeat("a", 50), RoleResume))
}

func TestValidateJob(t *testing.T) {
	padding := strings.Repeat("Build reliable services with our platform team. ", 3)

	tests := []struct {
		name string
		text string
		want Verdict
	}{
		{name: "fetch error string is too short", text: FetchErrorMessage, want: TooShort},
		{name: "short search page", text: "Search Jobs | Acme Careers. " + padding, want: LooksLikeSearchResults},
		{name: "long page mentioning search jobs", text: "search jobs " + strings.Repeat(padding, 5), want: Valid},
		{name: "not found page", text: "Oops! Page Not Found. " + padding, want: LooksLikeErrorPage},
		{name: "access denied", text: "Access denied for this resource. " + padding, want: LooksLikeErrorPage},
		{name: "unextractable message", text: UnextractableMessage, want: LooksLikeErrorPage},
		{name: "parse diagnostic", text: "Error parsing document: boom. " + padding, want: LooksLikeErrorPage},
		{name: "real posting", text: "Senior Go Engineer. " + padding, want: Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.text, RoleJob))
		})
	}
}

func TestValidateResumeIgnoresPageMarkers(t *testing.T) {
	text := "Page not found in my portfolio, but I shipped search jobs features at Acme for five years."
	assert.Equal(t, Valid, Validate(text, RoleResume))
	assert.Equal(t, LooksLikeErrorPage, Validate("Error: Invalid PDF file. Please ensure the file is not corrupted.", RoleResume))
}

func TestFetchErrorMessageIsBelowJobThreshold(t *testing.T) {
	assert.Less(t, RuneLen(FetchErrorMessage), MinJobTextChars)
	assert.Greater(t, RuneLen(UnextractableMessage), MinJobTextChars)
}

func TestLooksUnextractable(t *testing.T) {
	long := strings.Repeat("Go engineer with Kubernetes experience. ", 20)

	assert.True(t, LooksUnextractable("tiny"))
	assert.True(t, LooksUnextractable(long+"Access Denied"))
	assert.True(t, LooksUnextractable(long+"search jobs"))
	assert.False(t, LooksUnextractable(long))
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "too_short", TooShort.String())
	assert.Equal(t, "error_page", LooksLikeErrorPage.String())
	assert.Equal(t, "search_results", LooksLikeSearchResults.String())
	assert.Equal(t, "unknown", Verdict(42).String())
}
