// Package types provides type definitions for structured data used throughout the resume-screener system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Upload is a raw file handed to an analysis run.
// Filename carries the extension that selects the text extraction method.
// ReadErr is set when the file could not be read; the run reports it as skipped.
type Upload struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
	ReadErr  error  `json:"-"`
}

// Document is an extracted text document and its normalized form.
// One Document exists per résumé plus one for the job description.
type Document struct {
	Filename   string `json:"filename"`
	RawText    string `json:"raw_text"`
	Normalized string `json:"normalized"`
}

// ExtractionResult holds the rule-based features extracted from one document.
type ExtractionResult struct {
	SkillsFound     []string `json:"skills_found"`
	ExperienceYears int      `json:"experience_years"`
}

// SkillCount returns the number of distinct matched skills.
func (e ExtractionResult) SkillCount() int {
	return len(e.SkillsFound)
}

// SimilarityScore is the closeness of a résumé to the job description.
// Scale is the upper bound of Value: 100 for embeddings, 1 for TF-IDF.
type SimilarityScore struct {
	Value float64 `json:"value"`
	Scale float64 `json:"scale"`
}

// Unit returns the score on a 0-1 scale.
func (s SimilarityScore) Unit() float64 {
	if s.Scale <= 0 {
		return 0
	}
	return s.Value / s.Scale
}
