package nlp

import (
	"jobmatcher/internal/errors"

	prose "github.com/jdkato/prose/v2"
)

// Token is a surface form with its part-of-speech tag (Penn Treebank set).
type Token struct {
	Text string
	Tag  string
}

// Tagger tokenizes text and assigns part-of-speech tags. Implementations
// must be safe for concurrent use; the production tagger is a read-only
// model loaded once at startup and injected wherever tagging is needed,
// so tests can substitute a deterministic double.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// ProseTagger is a Tagger backed by the prose statistical POS model.
type ProseTagger struct{}

// NewProseTagger constructs the process-wide tagger. The underlying model
// is embedded in the prose package; there is nothing to tear down.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag tokenizes and tags the given text.
func (t *ProseTagger) Tag(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeTaggerInitFailed,
			"Failed to tag document text", err)
	}

	proseTokens := doc.Tokens()
	tokens := make([]Token, 0, len(proseTokens))
	for _, tok := range proseTokens {
		tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	return tokens, nil
}
