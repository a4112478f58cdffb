package models

type UploadResponse struct {
	ID               string `json:"id"`
	OriginalName     string `json:"original_name"`
	FileType         string `json:"file_type"`
	ExtractionMethod string `json:"extraction_method"`
	PageCount        int    `json:"page_count"`
	Preview          string `json:"preview"`
	Error            string `json:"error,omitempty"`
}

type AnalyzeRequest struct {
	ResumeID       string `json:"resume_id" form:"resume_id"`
	JobDescription string `json:"job_description" form:"job_description"`
}

type AnalyzeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string        `json:"id"`
	ResumeID     string        `json:"resume_id"`
	Status       string        `json:"status"`
	Result       *AnalysisData `json:"result,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}

type AnalysisData struct {
	Feedback string `json:"feedback"`
	Model    string `json:"model"`
}
