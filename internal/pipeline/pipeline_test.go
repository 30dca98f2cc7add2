package pipeline

import (
	"context"
	"strings"
	"testing"

	"jobmatcher/internal/nlp"
)

// wordTagger tags every whitespace-separated word as a proper noun, which
// keeps the pipeline behavior deterministic without the statistical model.
type wordTagger struct{}

func (wordTagger) Tag(text string) ([]nlp.Token, error) {
	words := strings.Fields(text)
	tokens := make([]nlp.Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, nlp.Token{Text: w, Tag: "NNP"})
	}
	return tokens, nil
}

func TestRun(t *testing.T) {
	p := New(wordTagger{}, nil, nil)

	resume := "Go Python Bachelor 4 years of Go"
	jobs := []string{
		"Go Python",
		`{"title": "Java Role", "description": "Java Spring"}`,
	}

	report, err := p.Run(context.Background(), resume, jobs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}

	// "Go Python": both tokens are resume skills, so 100%
	if got := report.Results[0].SkillsMatchPercentage; got != 100 {
		t.Errorf("Results[0].SkillsMatchPercentage = %v, want 100", got)
	}
	// "Java Spring": no overlap
	if got := report.Results[1].SkillsMatchPercentage; got != 0 {
		t.Errorf("Results[1].SkillsMatchPercentage = %v, want 0", got)
	}

	if report.BestFit == nil {
		t.Fatal("expected a best fit")
	}
	if report.BestFit.JobTitle != "N/A" {
		t.Errorf("BestFit.JobTitle = %q, want %q", report.BestFit.JobTitle, "N/A")
	}

	if report.Resume.TotalExperienceYears != 4 {
		t.Errorf("Resume.TotalExperienceYears = %v, want 4", report.Resume.TotalExperienceYears)
	}
	if len(report.Resume.Education) != 1 || report.Resume.Education[0] != "Bachelor" {
		t.Errorf("Resume.Education = %v, want [Bachelor]", report.Resume.Education)
	}
}

func TestRunNoJobs(t *testing.T) {
	p := New(wordTagger{}, nil, nil)

	report, err := p.Run(context.Background(), "Go engineer", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("expected no results, got %d", len(report.Results))
	}
	if report.BestFit != nil {
		t.Errorf("expected nil BestFit, got %+v", report.BestFit)
	}
}

func TestRunMalformedJobFailsWhole(t *testing.T) {
	p := New(wordTagger{}, nil, nil)

	_, err := p.Run(context.Background(), "Go engineer", []string{"fine", `{"broken`})
	if err == nil {
		t.Fatal("expected error for malformed job blob")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	p := New(wordTagger{}, nil, nil)

	resume := "Go Kubernetes 2 years of Go"
	jobs := []string{"Go Kubernetes Docker"}

	first, err := p.Run(context.Background(), resume, jobs)
	if err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	second, err := p.Run(context.Background(), resume, jobs)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	if first.Results[0].SkillsMatchPercentage != second.Results[0].SkillsMatchPercentage {
		t.Errorf("runs diverged: %v vs %v",
			first.Results[0].SkillsMatchPercentage, second.Results[0].SkillsMatchPercentage)
	}
	if len(first.Resume.Skills) != len(second.Resume.Skills) {
		t.Errorf("skill sets diverged: %v vs %v", first.Resume.Skills, second.Resume.Skills)
	}
}
