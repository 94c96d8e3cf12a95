package models

type AnalyzeRequest struct {
	JobURL         string `json:"jobUrl" form:"jobUrl"`
	JobDescription string `json:"jobDescription" form:"jobDescription"`
	ResumeURL      string `json:"resumeUrl" form:"resumeUrl"`
}

type KeywordsRequest struct {
	JobDescription string `json:"jobDescription" form:"jobDescription"`
	ResumeText     string `json:"resumeText" form:"resumeText"`
	Limit          int    `json:"limit" form:"limit"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type StatusResponse struct {
	OK                 bool   `json:"ok"`
	Message            string `json:"message"`
	Route              string `json:"route"`
	Expects            string `json:"expects"`
	Timestamp          string `json:"timestamp"`
	ProviderConfigured bool   `json:"provider_configured"`
	Provider           string `json:"provider,omitempty"`
	Environment        string `json:"environment"`
}
