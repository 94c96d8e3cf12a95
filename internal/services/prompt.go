package services

import (
	"fmt"
)

// CompletionRequest is everything a provider needs for one analysis call.
type CompletionRequest struct {
	Instructions    string
	UserMessage     string
	MaxOutputTokens int
	Temperature     float32
}

// ScoringCategory is one weighted section of the explanation.
type ScoringCategory struct {
	Name   string
	Points int
}

// ScoringCategories sum to 100.
var ScoringCategories = []ScoringCategory{
	{Name: "Technical Skills Match", Points: 40},
	{Name: "Experience Relevance", Points: 30},
	{Name: "Industry/Domain Knowledge", Points: 15},
	{Name: "Educational Background", Points: 10},
	{Name: "Soft Skills/Culture Fit", Points: 5},
}

const fitAnalysisInstructions = `You are an expert job fit analyzer. You MUST provide comprehensive analysis following the EXACT structure below.

YOUR EXPLANATION FIELD MUST INCLUDE ALL 5 SECTIONS WITH DETAILED BREAKDOWNS:

**1. Technical Skills Match (X/40 points):**
- Job Requirements: [Quote exact skills/technologies from job posting]
- Resume Skills: [Quote exact skills/technologies from resume]
- Skill Matches: [List specific overlapping skills]
- Missing Skills: [List specific missing skills]
- Assessment: [Detailed evaluation]

**2. Experience Relevance (X/30 points):**
- Required Experience: [Quote experience requirements from job]
- Candidate Experience: [List specific job titles, companies, durations from resume]
- Project Alignment: [Mention specific projects/achievements]
- Experience Assessment: [Detailed evaluation]

**3. Industry/Domain Knowledge (X/15 points):**
- Required Domain: [Quote industry/domain requirements]
- Candidate Background: [Assess relevant industry experience]
- Knowledge Assessment: [Detailed evaluation]

**4. Educational Background (X/10 points):**
- Required Education: [Quote education requirements from job]
- Candidate Education: [University name, degree, GPA, relevant coursework from resume]
- Educational Assessment: [Detailed evaluation highlighting strengths]

**5. Soft Skills/Culture Fit (X/5 points):**
- Evidence Found: [Quote specific examples from resume]
- Assessment: [Detailed evaluation]

**Total Score: X/100** (must equal sum of all categories)

If you do not include ALL 5 sections with detailed breakdowns, your response is incomplete.

Respond with valid JSON:
{
  "fitLevel": "string",
  "recommendation": "string",
  "matchScore": number,
  "explanation": "string",
  "improvements": "string"
}`

const fitAnalysisUserTemplate = `MANDATORY: Your explanation must include ALL 5 detailed sections as specified in the system prompt. Do not provide a summary - provide the complete breakdown.

=== JOB POSTING ===
%s

=== RESUME ===
%s

REQUIRED OUTPUT:
1. Complete Technical Skills Match section with quotes and assessment
2. Complete Experience Relevance section with specific roles and companies
3. Complete Industry/Domain Knowledge section
4. Complete Educational Background section with university, degree, GPA, coursework
5. Complete Soft Skills/Culture Fit section with evidence
6. Total score calculation showing all category breakdowns
7. Specific improvement recommendations

Your explanation field MUST be comprehensive and follow the exact 5-section format specified.`

type PromptBuilder struct {
	promptCap       int
	maxOutputTokens int
	temperature     float32
}

func NewPromptBuilder(promptCap, maxOutputTokens int, temperature float32) *PromptBuilder {
	return &PromptBuilder{
		promptCap:       promptCap,
		maxOutputTokens: maxOutputTokens,
		temperature:     temperature,
	}
}

// BuildFitAnalysisRequest embeds both texts, each cut to the prompt sub-cap.
func (pb *PromptBuilder) BuildFitAnalysisRequest(jobText, resumeText string) CompletionRequest {
	return CompletionRequest{
		Instructions: fitAnalysisInstructions,
		UserMessage: fmt.Sprintf(fitAnalysisUserTemplate,
			TruncateRunes(jobText, pb.promptCap),
			TruncateRunes(resumeText, pb.promptCap),
		),
		MaxOutputTokens: pb.maxOutputTokens,
		Temperature:     pb.temperature,
	}
}
