package formatters

import (
	"strings"
	"testing"

	"jobmatcher/internal/types"
)

func sampleReport() types.MatchReport {
	best := types.MatchResult{
		JobTitle:                "Platform Engineer",
		JobDescription:          "Go and Kubernetes",
		SkillsMatchPercentage:   66.666666,
		ExperienceMatch:         true,
		EducationMatch:          false,
		TotalExperienceRequired: 3,
	}
	return types.MatchReport{
		Resume: types.ResumeFacts{
			Skills:               []string{"Go", "Kubernetes"},
			Education:            []string{"Bachelor"},
			TotalExperienceYears: 4,
		},
		Results: []types.MatchResult{best},
		BestFit: &best,
	}
}

func TestFormatMatchReportText(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleReport(), "text")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	for _, want := range []string{
		"=== BEST JOB FIT ===",
		"Platform Engineer",
		"66.67%",
		"Experience Match: Yes",
		"Education Match: No",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatMatchReportMarkdown(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleReport(), "markdown")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	for _, want := range []string{
		"# Job Match Report",
		"## Best Job Fit",
		"| 1 | Platform Engineer |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatMatchReportPointer(t *testing.T) {
	report := sampleReport()
	out, err := GlobalRegistry.Format(&report, "text")
	if err != nil {
		t.Fatalf("Format returned error for pointer input: %v", err)
	}
	if !strings.Contains(out, "Platform Engineer") {
		t.Errorf("pointer input produced unexpected output:\n%s", out)
	}
}

func TestFormatMatchReportNoBestFit(t *testing.T) {
	report := types.MatchReport{}
	out, err := GlobalRegistry.Format(report, "text")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(out, "No job descriptions to match against.") {
		t.Errorf("empty report output missing sentinel line:\n%s", out)
	}
}

func TestFormatResumeFacts(t *testing.T) {
	facts := types.ResumeFacts{
		Skills:               []string{"Go"},
		Education:            []string{"Master"},
		TotalExperienceYears: 2.5,
	}

	out, err := GlobalRegistry.Format(facts, "text")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	for _, want := range []string{"=== RESUME FACTS ===", "2.5 years", "Master", "Skills (1):"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSONFallback(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleReport(), "json")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(out, `"Platform Engineer"`) {
		t.Errorf("json output missing job title:\n%s", out)
	}
}

func TestFormatUnsupported(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleReport(), "yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
