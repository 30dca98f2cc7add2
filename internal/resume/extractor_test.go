package resume

import (
	"reflect"
	"testing"

	"jobmatcher/internal/nlp"
)

// fakeTagger returns a canned token stream so tests do not depend on the
// statistical model's exact tagging decisions.
type fakeTagger struct {
	tokens []nlp.Token
	err    error
}

func (f *fakeTagger) Tag(text string) ([]nlp.Token, error) {
	return f.tokens, f.err
}

func TestDefaultClassifier(t *testing.T) {
	tests := []struct {
		name     string
		token    nlp.Token
		expected bool
	}{
		{name: "common noun", token: nlp.Token{Text: "engineer", Tag: "NN"}, expected: true},
		{name: "plural noun", token: nlp.Token{Text: "systems", Tag: "NNS"}, expected: true},
		{name: "proper noun", token: nlp.Token{Text: "Go", Tag: "NNP"}, expected: true},
		{name: "plural proper noun", token: nlp.Token{Text: "Kubernetes", Tag: "NNPS"}, expected: true},
		{name: "verb rejected", token: nlp.Token{Text: "developed", Tag: "VBD"}, expected: false},
		{name: "adjective rejected", token: nlp.Token{Text: "senior", Tag: "JJ"}, expected: false},
		{name: "single char noun rejected", token: nlp.Token{Text: "C", Tag: "NNP"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultClassifier(tt.token); got != tt.expected {
				t.Errorf("DefaultClassifier(%v) = %v, want %v", tt.token, got, tt.expected)
			}
		})
	}
}

func TestExtractSkills(t *testing.T) {
	tagger := &fakeTagger{tokens: []nlp.Token{
		{Text: "Go", Tag: "NNP"},
		{Text: "developed", Tag: "VBD"},
		{Text: "Python", Tag: "NNP"},
		{Text: "Go", Tag: "NNP"}, // duplicate, must collapse
		{Text: "microservices", Tag: "NNS"},
		{Text: "a", Tag: "DT"},
	}}

	facts, err := NewExtractor(tagger, nil).Extract("ignored by fake tagger")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// Distinct, sorted
	expected := []string{"Go", "Python", "microservices"}
	if !reflect.DeepEqual(facts.Skills, expected) {
		t.Errorf("Skills = %v, want %v", facts.Skills, expected)
	}
}

func TestExtractEducation(t *testing.T) {
	tagger := &fakeTagger{tokens: []nlp.Token{
		{Text: "PhD", Tag: "NNP"},
		{Text: "Bachelor", Tag: "NNP"},
		{Text: "bachelor", Tag: "NN"}, // lowercase does not match the vocabulary
		{Text: "Bachelor", Tag: "NNP"},
	}}

	facts, err := NewExtractor(tagger, nil).Extract("ignored")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// Vocabulary order, not occurrence order, and no duplicates
	expected := []string{"Bachelor", "PhD"}
	if !reflect.DeepEqual(facts.Education, expected) {
		t.Errorf("Education = %v, want %v", facts.Education, expected)
	}
}

func TestTotalExperience(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{
			name:     "years only",
			text:     "5 years of backend development",
			expected: 5,
		},
		{
			name:     "years and months",
			text:     "5 years of Go and 6 months of Rust",
			expected: 5.5,
		},
		{
			name:     "months normalize to fractional years",
			text:     "18 months in platform engineering",
			expected: 1.5,
		},
		{
			name:     "multiple year claims accumulate",
			text:     "3 years of Java then 2 years of Go",
			expected: 5,
		},
		{
			name:     "other unit words do not count",
			text:     "4 weeks of onboarding and 2 decades of enthusiasm",
			expected: 0,
		},
		{
			name:     "no claims",
			text:     "Seasoned engineer with broad experience",
			expected: 0,
		},
		{
			name:     "bare duration at end of text does not count",
			text:     "Professional experience: 5 years",
			expected: 0,
		},
		{
			name:     "bare duration before trailing newline does not count",
			text:     "Tenure: 5 years\n",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := totalExperience(tt.text); got != tt.expected {
				t.Errorf("totalExperience(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractTaggerError(t *testing.T) {
	tagger := &fakeTagger{err: errFake}
	_, err := NewExtractor(tagger, nil).Extract("anything")
	if err == nil {
		t.Fatal("expected tagger error to propagate, got nil")
	}
}

var errFake = &taggerError{}

type taggerError struct{}

func (*taggerError) Error() string { return "tagger failed" }
