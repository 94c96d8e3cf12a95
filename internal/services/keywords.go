package services

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"alfredoptarigan/job-fit-analyzer/internal/models"
)

const DefaultKeywordLimit = 40

// keywordSplitRe keeps tech tokens such as "c++", "c#", "node.js" and "ci/cd" whole.
var keywordSplitRe = regexp.MustCompile(`[^a-z0-9+.#/-]+`)

var keywordStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"been": true, "but": true, "by": true, "can": true, "do": true, "for": true, "from": true,
	"has": true, "have": true, "he": true, "her": true, "his": true, "how": true, "i": true,
	"if": true, "in": true, "into": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "our": true, "she": true, "so": true, "such": true, "that": true,
	"the": true, "their": true, "them": true, "they": true, "this": true, "to": true,
	"us": true, "was": true, "we": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "will": true, "with": true, "you": true,
	"your": true, "all": true, "also": true, "any": true, "about": true, "more": true,
	"than": true, "not": true, "no": true, "other": true, "these": true, "those": true,
	"etc": true, "e.g": true, "i.e": true,
}

// Buzzwords are cliché resume phrases reported by OverusedBuzzwords.
var Buzzwords = []string{
	"results-driven", "detail-oriented", "self-starter", "go-getter", "team player", "dynamic", "synergy", "innovative",
	"hard-working", "fast-paced", "proactive", "strategic thinker", "passionate", "thought leader", "rockstar",
}

// TopKeywords returns the n most frequent non-stop-word tokens; ties keep first-seen order.
func TopKeywords(text string, n int) []string {
	if n <= 0 {
		n = DefaultKeywordLimit
	}

	counts := make(map[string]int)
	order := []string{}
	for _, token := range keywordSplitRe.Split(strings.ToLower(text), -1) {
		token = strings.Trim(token, ".-/")
		if token == "" || len(token) < 2 || keywordStopWords[token] {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Coverage splits keywords into those found in resumeText and those missing from it.
func Coverage(keywords []string, resumeText string) (matched, missing []string) {
	lower := strings.ToLower(resumeText)
	matched = []string{}
	missing = []string{}
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		} else {
			missing = append(missing, keyword)
		}
	}
	return matched, missing
}

// OverusedBuzzwords lists the Buzzwords present in text.
func OverusedBuzzwords(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, buzzword := range Buzzwords {
		if strings.Contains(lower, buzzword) {
			found = append(found, buzzword)
		}
	}
	return found
}

// BuildKeywordReport computes the auxiliary keyword signal for a job/resume pair.
func BuildKeywordReport(jobText, resumeText string, limit int) models.KeywordReport {
	keywords := TopKeywords(jobText, limit)
	matched, missing := Coverage(keywords, resumeText)

	var coverage float64
	if len(keywords) > 0 {
		coverage = math.Round(float64(len(matched))/float64(len(keywords))*1000) / 10
	}

	return models.KeywordReport{
		Keywords:  keywords,
		Matched:   matched,
		Missing:   missing,
		Coverage:  coverage,
		Buzzwords: OverusedBuzzwords(resumeText),
	}
}
