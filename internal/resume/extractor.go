package resume

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"jobmatcher/internal/nlp"
	"jobmatcher/internal/types"
)

// Classifier decides whether a tagged token is a skill candidate. The
// default treats every common or proper noun longer than one character as a
// skill. That heuristic is deliberately coarse — it will pick up non-skill
// nouns — and is kept swappable so a stricter classifier can be substituted
// without touching the pipeline shape.
type Classifier func(token nlp.Token) bool

// DefaultClassifier is the noun/proper-noun heuristic. Penn Treebank tags
// NN, NNS, NNP and NNPS all count.
func DefaultClassifier(token nlp.Token) bool {
	return strings.HasPrefix(token.Tag, "NN") && len(token.Text) > 1
}

// experienceRe matches "<N> year(s)/month(s) [of|in] <phrase>" claims.
// The unit words are matched literally; a number next to any other unit
// word is intentionally not counted. The unit must be followed by at
// least one more word, so a bare trailing duration never matches.
var experienceRe = regexp.MustCompile(`(\d+)\s+(years?|months?)\s+(?:of|in)?\s*[A-Za-z\s]+`)

// Extractor turns resume plain text into structured facts.
type Extractor struct {
	tagger     nlp.Tagger
	classifier Classifier
}

// NewExtractor creates a resume information extractor. A nil classifier
// selects DefaultClassifier.
func NewExtractor(tagger nlp.Tagger, classifier Classifier) *Extractor {
	if classifier == nil {
		classifier = DefaultClassifier
	}
	return &Extractor{tagger: tagger, classifier: classifier}
}

// Extract computes ResumeFacts from resume text. Pure function of its
// input: no side effects, no retained state.
func (e *Extractor) Extract(text string) (types.ResumeFacts, error) {
	tokens, err := e.tagger.Tag(text)
	if err != nil {
		return types.ResumeFacts{}, err
	}

	facts := types.ResumeFacts{
		Skills:               e.collectSkills(tokens),
		Education:            collectEducation(tokens),
		TotalExperienceYears: totalExperience(text),
	}
	return facts, nil
}

// collectSkills gathers the distinct surface forms the classifier accepts.
// The result is sorted so identical inputs yield identical fact values.
func (e *Extractor) collectSkills(tokens []nlp.Token) []string {
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if e.classifier(tok) {
			seen[tok.Text] = struct{}{}
		}
	}

	skills := make([]string, 0, len(seen))
	for s := range seen {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

// collectEducation gathers distinct vocabulary keywords appearing verbatim
// as tokens, in vocabulary order.
func collectEducation(tokens []nlp.Token) []string {
	present := make(map[string]bool)
	for _, tok := range tokens {
		for _, keyword := range types.EducationVocabulary {
			if tok.Text == keyword {
				present[keyword] = true
			}
		}
	}

	education := make([]string, 0, len(present))
	for _, keyword := range types.EducationVocabulary {
		if present[keyword] {
			education = append(education, keyword)
		}
	}
	return education
}

// totalExperience sums duration claims: year quantities accumulate whole,
// month quantities accumulate divided by twelve. Unrecognized unit words
// never reach either accumulator because the regex only admits the literal
// words year(s) and month(s).
func totalExperience(text string) float64 {
	var years, months int
	for _, m := range experienceRe.FindAllStringSubmatch(text, -1) {
		quantity, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[2])
		switch {
		case strings.Contains(unit, "year"):
			years += quantity
		case strings.Contains(unit, "month"):
			months += quantity
		}
	}
	return float64(years) + float64(months)/12
}
