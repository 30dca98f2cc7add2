package match

import (
	"jobmatcher/internal/types"
)

// Match scores the resume against every job record, one result per record,
// input order preserved. Pure function: neither input is mutated.
func Match(facts types.ResumeFacts, jobs []types.JobRecord) []types.MatchResult {
	results := make([]types.MatchResult, 0, len(jobs))
	for _, j := range jobs {
		results = append(results, matchOne(facts, j))
	}
	return results
}

func matchOne(facts types.ResumeFacts, j types.JobRecord) types.MatchResult {
	return types.MatchResult{
		JobTitle:                j.Title,
		JobDescription:          j.Description,
		SkillsMatchPercentage:   skillsMatchPercentage(facts.Skills, j.RequirementTokens),
		ExperienceMatch:         facts.TotalExperienceYears >= experienceRequired(j.ExperienceEntries),
		EducationMatch:          educationMatch(facts.Education, j.EducationRequired),
		TotalExperienceRequired: experienceRequired(j.ExperienceEntries),
	}
}

// skillsMatchPercentage is 100 x |distinct skills ∩ distinct tokens| over
// the raw token count. A job with no requirement tokens scores zero; the
// denominator is never zero. Matching is exact surface equality.
func skillsMatchPercentage(skills, requirementTokens []string) float64 {
	if len(requirementTokens) == 0 {
		return 0
	}

	skillSet := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		skillSet[s] = struct{}{}
	}

	matched := make(map[string]struct{})
	for _, tok := range requirementTokens {
		if _, ok := skillSet[tok]; ok {
			matched[tok] = struct{}{}
		}
	}

	return float64(len(matched)) / float64(len(requirementTokens)) * 100
}

// experienceRequired sums entry quantities regardless of unit. Months are
// not normalized on the job side, unlike the resume side.
func experienceRequired(entries []types.ExperienceEntry) float64 {
	var total int
	for _, e := range entries {
		total += e.Quantity
	}
	return float64(total)
}

// educationMatch is true when any resume education keyword appears in the
// job's required sequence. Duplicates in either side are irrelevant.
func educationMatch(education, required []string) bool {
	requiredSet := make(map[string]struct{}, len(required))
	for _, r := range required {
		requiredSet[r] = struct{}{}
	}
	for _, e := range education {
		if _, ok := requiredSet[e]; ok {
			return true
		}
	}
	return false
}

// BestFit returns the result with the highest skills match percentage.
// Ties go to the earliest result. The second value is false when there are
// no results; callers treat that as nothing to display, not an error.
func BestFit(results []types.MatchResult) (types.MatchResult, bool) {
	if len(results) == 0 {
		return types.MatchResult{}, false
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.SkillsMatchPercentage > best.SkillsMatchPercentage {
			best = r
		}
	}
	return best, true
}
