package match

import (
	"testing"

	"jobmatcher/internal/types"
)

func TestSkillsMatchPercentage(t *testing.T) {
	tests := []struct {
		name     string
		facts    types.ResumeFacts
		job      types.JobRecord
		expected float64
	}{
		{
			name:  "half of raw tokens matched",
			facts: types.ResumeFacts{Skills: []string{"Go", "Python"}},
			job: types.JobRecord{
				RequirementTokens: []string{"Go", "Go", "Java", "Python"},
			},
			// Distinct matches {Go, Python} over 4 raw tokens
			expected: 50,
		},
		{
			name:  "no requirement tokens scores zero",
			facts: types.ResumeFacts{Skills: []string{"Go"}},
			job: types.JobRecord{
				RequirementTokens: nil,
			},
			expected: 0,
		},
		{
			name:  "no overlap",
			facts: types.ResumeFacts{Skills: []string{"Haskell"}},
			job: types.JobRecord{
				RequirementTokens: []string{"Go", "Java"},
			},
			expected: 0,
		},
		{
			name:  "case sensitive matching",
			facts: types.ResumeFacts{Skills: []string{"go"}},
			job: types.JobRecord{
				RequirementTokens: []string{"Go"},
			},
			expected: 0,
		},
		{
			name:  "full match still diluted by duplicates",
			facts: types.ResumeFacts{Skills: []string{"Go"}},
			job: types.JobRecord{
				RequirementTokens: []string{"Go", "Go", "Go", "Go"},
			},
			expected: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Match(tt.facts, []types.JobRecord{tt.job})
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			if got := results[0].SkillsMatchPercentage; got != tt.expected {
				t.Errorf("SkillsMatchPercentage = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExperienceMatch(t *testing.T) {
	tests := []struct {
		name             string
		resumeYears      float64
		entries          []types.ExperienceEntry
		expectedRequired float64
		expectedMatch    bool
	}{
		{
			name:             "resume meets requirement",
			resumeYears:      5,
			entries:          []types.ExperienceEntry{{Quantity: 3, Unit: "years"}},
			expectedRequired: 3,
			expectedMatch:    true,
		},
		{
			name:             "resume falls short",
			resumeYears:      2,
			entries:          []types.ExperienceEntry{{Quantity: 3, Unit: "years"}},
			expectedRequired: 3,
			expectedMatch:    false,
		},
		{
			// Job-side quantities sum without unit conversion, so a job
			// asking for 6 months demands 6 "years" from the resume side.
			name:             "month quantities are not normalized",
			resumeYears:      5.5,
			entries:          []types.ExperienceEntry{{Quantity: 6, Unit: "months"}},
			expectedRequired: 6,
			expectedMatch:    false,
		},
		{
			name:             "no requirement always matches",
			resumeYears:      0,
			entries:          nil,
			expectedRequired: 0,
			expectedMatch:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := types.ResumeFacts{TotalExperienceYears: tt.resumeYears}
			job := types.JobRecord{ExperienceEntries: tt.entries}

			results := Match(facts, []types.JobRecord{job})
			r := results[0]
			if r.TotalExperienceRequired != tt.expectedRequired {
				t.Errorf("TotalExperienceRequired = %v, want %v", r.TotalExperienceRequired, tt.expectedRequired)
			}
			if r.ExperienceMatch != tt.expectedMatch {
				t.Errorf("ExperienceMatch = %v, want %v", r.ExperienceMatch, tt.expectedMatch)
			}
		})
	}
}

func TestEducationMatch(t *testing.T) {
	tests := []struct {
		name      string
		education []string
		required  []string
		expected  bool
	}{
		{
			name:      "shared keyword",
			education: []string{"Bachelor"},
			required:  []string{"Bachelor", "Degree"},
			expected:  true,
		},
		{
			name:      "no shared keyword",
			education: []string{"PhD"},
			required:  []string{"Bachelor"},
			expected:  false,
		},
		{
			name:      "job requires nothing",
			education: []string{"Master"},
			required:  nil,
			expected:  false,
		},
		{
			name:      "resume has nothing",
			education: nil,
			required:  []string{"Degree"},
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := types.ResumeFacts{Education: tt.education}
			job := types.JobRecord{EducationRequired: tt.required}

			results := Match(facts, []types.JobRecord{job})
			if got := results[0].EducationMatch; got != tt.expected {
				t.Errorf("EducationMatch = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatchPreservesOrder(t *testing.T) {
	facts := types.ResumeFacts{Skills: []string{"Go"}}
	jobs := []types.JobRecord{
		{Title: "first", RequirementTokens: []string{"Go"}},
		{Title: "second", RequirementTokens: []string{"Java"}},
		{Title: "third", RequirementTokens: []string{"Go", "Java"}},
	}

	results := Match(facts, jobs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].JobTitle != want {
			t.Errorf("results[%d].JobTitle = %q, want %q", i, results[i].JobTitle, want)
		}
	}
}

func TestBestFit(t *testing.T) {
	t.Run("empty results", func(t *testing.T) {
		_, ok := BestFit(nil)
		if ok {
			t.Error("expected ok=false for empty results")
		}
	})

	t.Run("highest percentage wins", func(t *testing.T) {
		results := []types.MatchResult{
			{JobTitle: "low", SkillsMatchPercentage: 10},
			{JobTitle: "high", SkillsMatchPercentage: 80},
			{JobTitle: "mid", SkillsMatchPercentage: 40},
		}
		best, ok := BestFit(results)
		if !ok {
			t.Fatal("expected ok=true")
		}
		if best.JobTitle != "high" {
			t.Errorf("BestFit = %q, want %q", best.JobTitle, "high")
		}
	})

	t.Run("ties go to the earliest result", func(t *testing.T) {
		results := []types.MatchResult{
			{JobTitle: "first", SkillsMatchPercentage: 50},
			{JobTitle: "second", SkillsMatchPercentage: 50},
		}
		best, _ := BestFit(results)
		if best.JobTitle != "first" {
			t.Errorf("BestFit = %q, want %q", best.JobTitle, "first")
		}
	})
}
