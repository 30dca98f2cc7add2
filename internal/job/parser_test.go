package job

import (
	"reflect"
	"testing"

	"jobmatcher/internal/errors"
	"jobmatcher/internal/types"
)

func TestParsePlainText(t *testing.T) {
	records, err := Parse([]string{"Backend engineer with 3 years of Go and a Bachelor Degree"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Title != "N/A" {
		t.Errorf("Title = %q, want %q", r.Title, "N/A")
	}
	if r.Source != types.JobSourcePlainText {
		t.Errorf("Source = %q, want %q", r.Source, types.JobSourcePlainText)
	}

	expectedTokens := []string{"Backend", "engineer", "with", "3", "years", "of", "Go", "and", "a", "Bachelor", "Degree"}
	if !reflect.DeepEqual(r.RequirementTokens, expectedTokens) {
		t.Errorf("RequirementTokens = %v, want %v", r.RequirementTokens, expectedTokens)
	}

	expectedExperience := []types.ExperienceEntry{{Quantity: 3, Unit: "years"}}
	if !reflect.DeepEqual(r.ExperienceEntries, expectedExperience) {
		t.Errorf("ExperienceEntries = %v, want %v", r.ExperienceEntries, expectedExperience)
	}

	expectedEducation := []string{"Bachelor", "Degree"}
	if !reflect.DeepEqual(r.EducationRequired, expectedEducation) {
		t.Errorf("EducationRequired = %v, want %v", r.EducationRequired, expectedEducation)
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name          string
		blob          string
		expectedTitle string
		expectedDesc  string
	}{
		{
			name:          "title and description",
			blob:          `{"title": "Platform Engineer", "description": "Kubernetes and 2 years of Go"}`,
			expectedTitle: "Platform Engineer",
			expectedDesc:  "Kubernetes and 2 years of Go",
		},
		{
			name:          "missing title falls back",
			blob:          `{"description": "Rust developer"}`,
			expectedTitle: "N/A",
			expectedDesc:  "Rust developer",
		},
		{
			name:          "explicitly empty title is kept",
			blob:          `{"title": "", "description": "Rust developer"}`,
			expectedTitle: "",
			expectedDesc:  "Rust developer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse([]string{tt.blob})
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			r := records[0]
			if r.Title != tt.expectedTitle {
				t.Errorf("Title = %q, want %q", r.Title, tt.expectedTitle)
			}
			if r.Description != tt.expectedDesc {
				t.Errorf("Description = %q, want %q", r.Description, tt.expectedDesc)
			}
			if r.Source != types.JobSourceJSON {
				t.Errorf("Source = %q, want %q", r.Source, types.JobSourceJSON)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	// A blob that opens a JSON object must parse as one
	_, err := Parse([]string{"plain first", `{"title": broken`})
	if err == nil {
		t.Fatal("expected error for malformed JSON blob, got nil")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeMalformedJobInput {
		t.Errorf("Code = %q, want %q", appErr.Code, errors.ErrCodeMalformedJobInput)
	}
	if appErr.Context["blob_index"] != 1 {
		t.Errorf("blob_index = %v, want 1", appErr.Context["blob_index"])
	}
}

func TestParsePreservesOrder(t *testing.T) {
	records, err := Parse([]string{"first job", "second job", "third job"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"first job", "second job", "third job"} {
		if records[i].Description != want {
			t.Errorf("records[%d].Description = %q, want %q", i, records[i].Description, want)
		}
	}
}

func TestRequirementTokensKeepDuplicates(t *testing.T) {
	records, err := Parse([]string{"Go Go Go"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := len(records[0].RequirementTokens); got != 3 {
		t.Errorf("expected 3 raw tokens, got %d", got)
	}
}
