package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"alfredoptarigan/job-fit-analyzer/internal/models"
)

const (
	DefaultImprovements         = "No specific improvements provided in this analysis."
	ExplanationFormatFallback   = "Analysis completed but explanation formatting issue occurred."
	ImprovementsFormatFallback  = "Improvement suggestions could not be formatted properly."
	DegradedRecommendation      = "Analysis completed but there was an issue with response formatting. Please try again for full details."
	DegradedExplanationFallback = "Error processing the AI analysis response."
	DegradedImprovements        = "Unable to generate improvement suggestions due to response formatting issues."

	degradedExcerptChars = 2000
	// degradedMinExcerptChars is the reply length above which the raw text is worth showing.
	degradedMinExcerptChars = 100
)

// RecoveryKind tags how an AnalysisResult was obtained from a model reply.
type RecoveryKind int

const (
	RecoveryParsed RecoveryKind = iota
	RecoveryDegraded
)

func (k RecoveryKind) String() string {
	if k == RecoveryParsed {
		return "parsed"
	}
	return "degraded"
}

// Recovery is the outcome of RecoverAnalysis. Cause explains a degraded result.
type Recovery struct {
	Kind   RecoveryKind
	Result models.AnalysisResult
	Cause  error
}

var (
	errNotJSONObject = errors.New("reply is not a JSON object")

	fenceJSONRe = regexp.MustCompile("(?i)```json\\s*")
	fenceRe     = regexp.MustCompile("```\\s*")

	outOfHundredRe = regexp.MustCompile(`(\d+)/100`)
	fitPhraseRe    = regexp.MustCompile(`(?i)\b(strong|good|moderate|weak|poor)\s+fit`)

	structuralPunctuation = strings.NewReplacer("{", "", "}", "", "[", "", "]", "", `"`, "")
	excessBlankLinesRe    = regexp.MustCompile(`\n{3,}`)
)

// RecoverAnalysis always produces a well-formed result from a model reply: a validated
// parse when possible, a pattern-based degraded result otherwise.
func RecoverAnalysis(raw string) Recovery {
	result, err := ParseAnalysis(raw)
	if err != nil {
		return Recovery{Kind: RecoveryDegraded, Result: DegradedAnalysis(raw), Cause: err}
	}
	return Recovery{Kind: RecoveryParsed, Result: result}
}

// CleanModelReply removes Markdown fences and any commentary around the outermost object.
func CleanModelReply(raw string) string {
	cleaned := fenceJSONRe.ReplaceAllString(raw, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

// ParseAnalysis is the strict path: parse, validate the required fields, then normalize.
func ParseAnalysis(raw string) (models.AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return models.AnalysisResult{}, ErrEmptyCompletion
	}

	candidate := CleanModelReply(raw)
	if !strings.HasPrefix(candidate, "{") {
		return models.AnalysisResult{}, errNotJSONObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("invalid JSON reply: %w", err)
	}

	fitLevel, ok := truthyText(fields["fitLevel"])
	if !ok {
		return models.AnalysisResult{}, errors.New("reply has no fitLevel")
	}
	recommendation, ok := truthyText(fields["recommendation"])
	if !ok {
		return models.AnalysisResult{}, errors.New("reply has no recommendation")
	}
	score, ok := numberValue(fields["matchScore"])
	if !ok {
		return models.AnalysisResult{}, errors.New("reply matchScore is not a number")
	}

	result := models.AnalysisResult{
		FitLevel:       fitLevel,
		Recommendation: recommendation,
		MatchScore:     score,
		Explanation:    normalizeNarrative(fields["explanation"], true, ExplanationFormatFallback),
		Improvements:   normalizeNarrative(fields["improvements"], false, ImprovementsFormatFallback),
	}

	for key, value := range fields {
		switch key {
		case "fitLevel", "recommendation", "matchScore", "explanation", "improvements", "previews":
			continue
		}
		if result.Extra == nil {
			result.Extra = make(map[string]json.RawMessage)
		}
		result.Extra[key] = value
	}

	return result, nil
}

// normalizeNarrative keeps strings, flattens objects and arrays, and substitutes fallback
// for any other shape. Absent or falsy improvements get DefaultImprovements instead.
func normalizeNarrative(raw json.RawMessage, required bool, fallback string) string {
	value, present := decodeValue(raw)

	if !required && !isTruthy(value, present) {
		return DefaultImprovements
	}

	switch v := value.(type) {
	case string:
		return v
	case map[string]any, []any:
		if flat, err := FlattenStructured(raw); err == nil {
			return flat
		}
	}
	return fallback
}

// DegradedAnalysis builds a best-effort result from a reply that could not be parsed.
func DegradedAnalysis(raw string) models.AnalysisResult {
	result := models.AnalysisResult{
		FitLevel:       models.FitLevelAnalysisError,
		Recommendation: DegradedRecommendation,
		MatchScore:     ExtractOutOfHundredScore(raw),
		Explanation:    DegradedExplanationFallback,
		Improvements:   DegradedImprovements,
	}

	if fitLevel, ok := ExtractFitLevel(raw); ok {
		result.FitLevel = fitLevel
	}

	if RuneLen(raw) > degradedMinExcerptChars {
		excerpt := TruncateRunes(raw, degradedExcerptChars)
		if len(excerpt) < len(raw) {
			excerpt += "..."
		}
		result.Explanation = excerpt
	}

	return result
}

// ExtractOutOfHundredScore returns N from the first "N/100" in text, or 0.
func ExtractOutOfHundredScore(text string) float64 {
	m := outOfHundredRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return float64(score)
}

// ExtractFitLevel finds the first "<Strong|Good|Moderate|Weak|Poor> Fit" phrase.
func ExtractFitLevel(text string) (string, bool) {
	m := fitPhraseRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return cases.Title(language.English).String(strings.ToLower(m[1])) + " Fit", true
}

// FlattenStructured renders a JSON object or array as "key: value" lines in source order,
// without braces, brackets or quotes.
func FlattenStructured(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var lines []string
	if err := flattenValue(dec, "", 0, &lines); err != nil {
		return "", err
	}

	for i, line := range lines {
		lines[i] = strings.TrimSpace(structuralPunctuation.Replace(line))
	}

	text := strings.Join(lines, "\n")
	text = excessBlankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

func flattenValue(dec *json.Decoder, key string, depth int, lines *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		value := scalarText(tok)
		if key == "" {
			*lines = append(*lines, value)
		} else {
			*lines = append(*lines, key+": "+value)
		}
		return nil
	}

	if key != "" {
		*lines = append(*lines, key+":")
	}

	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			name, _ := keyTok.(string)
			if err := flattenValue(dec, name, depth+1, lines); err != nil {
				return err
			}
		}
	case '[':
		for dec.More() {
			if err := flattenValue(dec, "", depth+1, lines); err != nil {
				return err
			}
		}
	}

	// closing delimiter
	if _, err := dec.Token(); err != nil {
		return err
	}
	if depth == 1 {
		*lines = append(*lines, "")
	}
	return nil
}

func scalarText(tok json.Token) string {
	switch v := tok.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

func decodeValue(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}
	return value, true
}

// isTruthy treats null, false, 0 and "" as absent.
func isTruthy(value any, present bool) bool {
	if !present {
		return false
	}
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

func truthyText(raw json.RawMessage) (string, bool) {
	value, present := decodeValue(raw)
	if !isTruthy(value, present) {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		flat, err := FlattenStructured(raw)
		if err != nil || flat == "" {
			return "", false
		}
		return flat, true
	}
}

func numberValue(raw json.RawMessage) (float64, bool) {
	value, present := decodeValue(raw)
	if !present {
		return 0, false
	}
	score, ok := value.(float64)
	return score, ok
}
