package types

// JobSource identifies how a job description blob was supplied.
// The decision is made once at parse time and carried on the record.
type JobSource string

const (
	JobSourcePlainText JobSource = "plain"
	JobSourceJSON      JobSource = "json"
)

// ResumeFacts holds the structured facts extracted from a resume.
// Immutable once computed; never persisted across invocations.
type ResumeFacts struct {
	Skills               []string `json:"skills"`
	Education            []string `json:"education"`
	TotalExperienceYears float64  `json:"totalExperienceYears"`
}

// HasSkill reports whether the given surface form was extracted as a skill.
// Matching is exact; no case folding.
func (f ResumeFacts) HasSkill(token string) bool {
	for _, s := range f.Skills {
		if s == token {
			return true
		}
	}
	return false
}

// ExperienceEntry is one (quantity, unit) pair matched in a job description.
// The unit is kept verbatim and is deliberately not normalized here.
type ExperienceEntry struct {
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// JobRecord is a parsed job description.
type JobRecord struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Source            JobSource         `json:"source"`
	RequirementTokens []string          `json:"requirementTokens"`
	ExperienceEntries []ExperienceEntry `json:"experienceEntries"`
	EducationRequired []string          `json:"educationRequired"`
}

// MatchResult is the matching outcome for a single job.
type MatchResult struct {
	JobTitle                string  `json:"jobTitle"`
	JobDescription          string  `json:"jobDescription"`
	SkillsMatchPercentage   float64 `json:"skillsMatchPercentage"`
	ExperienceMatch         bool    `json:"experienceMatch"`
	EducationMatch          bool    `json:"educationMatch"`
	TotalExperienceRequired float64 `json:"totalExperienceRequired"`
}

// MatchReport is the full pipeline output: the resume facts, the per-job
// results in input order, and the best fit (nil when no jobs were supplied).
type MatchReport struct {
	Resume  ResumeFacts   `json:"resume"`
	Results []MatchResult `json:"results"`
	BestFit *MatchResult  `json:"bestFit,omitempty"`
}

// MatchRequest is the JSON request body for the /match endpoint and the
// input shape the pipeline consumes once document text has been extracted.
type MatchRequest struct {
	ResumeText string   `json:"resumeText"`
	Jobs       []string `json:"jobs"`
}
