package types

// EducationVocabulary is the fixed set of qualification keywords recognized
// on both the resume side and the job side. Matching is verbatim and
// case-sensitive.
var EducationVocabulary = []string{
	"Bachelor",
	"Master",
	"PhD",
	"Associate",
	"Degree",
	"Certification",
}
