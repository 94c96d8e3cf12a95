package models

import (
	"encoding/json"
)

// FitLevelAnalysisError labels results that were produced without a usable model reply.
const FitLevelAnalysisError = "Analysis Error"

type Previews struct {
	JobText    string `json:"jobText"`
	ResumeText string `json:"resumeText"`
}

// AnalysisResult is the fit assessment returned to callers.
// Extra holds any additional fields the model returned; they are emitted alongside
// the known fields but never override them.
type AnalysisResult struct {
	FitLevel       string
	Recommendation string
	MatchScore     float64
	Explanation    string
	Improvements   string
	Previews       *Previews
	Extra          map[string]json.RawMessage
}

var reservedResultKeys = map[string]bool{
	"fitLevel":       true,
	"recommendation": true,
	"matchScore":     true,
	"explanation":    true,
	"improvements":   true,
	"previews":       true,
}

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+6)
	for key, value := range r.Extra {
		if reservedResultKeys[key] {
			continue
		}
		out[key] = value
	}

	out["fitLevel"] = r.FitLevel
	out["recommendation"] = r.Recommendation
	out["matchScore"] = r.MatchScore
	out["explanation"] = r.Explanation
	out["improvements"] = r.Improvements
	if r.Previews != nil {
		out["previews"] = r.Previews
	}

	return json.Marshal(out)
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var known struct {
		FitLevel       string    `json:"fitLevel"`
		Recommendation string    `json:"recommendation"`
		MatchScore     float64   `json:"matchScore"`
		Explanation    string    `json:"explanation"`
		Improvements   string    `json:"improvements"`
		Previews       *Previews `json:"previews"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	*r = AnalysisResult{
		FitLevel:       known.FitLevel,
		Recommendation: known.Recommendation,
		MatchScore:     known.MatchScore,
		Explanation:    known.Explanation,
		Improvements:   known.Improvements,
		Previews:       known.Previews,
	}
	for key, value := range raw {
		if reservedResultKeys[key] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}
	return nil
}

// KeywordReport is the auxiliary keyword coverage signal. It is never part of AnalysisResult.
type KeywordReport struct {
	Keywords  []string `json:"keywords"`
	Matched   []string `json:"matched"`
	Missing   []string `json:"missing"`
	Coverage  float64  `json:"coverage"`
	Buzzwords []string `json:"buzzwords"`
}
