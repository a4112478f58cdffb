package services

import (
	"fmt"
	"strings"
)

const resumeReviewTemplate = `You are an experienced HR professional with technical expertise in fields like
Data Science, Data Analysis, DevOps, Machine Learning, Prompt Engineering,
AI Engineering, Full Stack Web Development, Big Data Engineering,
Marketing Analysis, Human Resource Management, or Software Development.

Review the following resume and provide:
- Strengths and weaknesses
- Skills already present
- Skills to improve
- Recommended courses/certifications
- Overall job role alignment

Resume:
%s
`

const jobComparisonTemplate = `
Additionally, compare this resume with the following Job Description:

Job Description:
%s

Mention how well the applicant matches the role and areas of improvement.
`

const referenceTemplate = `
Reference material (use it to ground course and certification recommendations; ignore it if irrelevant):
%s
`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeAnalysisPrompt embeds the resume text and, when present, the job
// description verbatim. Reference material is appended last.
func (pb *PromptBuilder) BuildResumeAnalysisPrompt(resumeText, jobDescription, referenceContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, resumeReviewTemplate, resumeText)

	if strings.TrimSpace(jobDescription) != "" {
		fmt.Fprintf(&b, jobComparisonTemplate, jobDescription)
	}

	if strings.TrimSpace(referenceContext) != "" {
		fmt.Fprintf(&b, referenceTemplate, referenceContext)
	}

	return b.String()
}

// BuildRetrievalQuery trims the resume to the part that best describes the candidate.
func (pb *PromptBuilder) BuildRetrievalQuery(resumeText, jobDescription string) string {
	query := resumeText
	if strings.TrimSpace(jobDescription) != "" {
		query = jobDescription + "\n\n" + resumeText
	}
	runes := []rune(query)
	if len(runes) > 8000 {
		query = string(runes[:8000])
	}
	return query
}

// FormatRAGContext renders retrieved chunks as numbered context blocks.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (%s, score %.2f) ---\n%s",
			i+1, result.DocType, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
