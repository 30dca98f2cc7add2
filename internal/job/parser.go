package job

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"jobmatcher/internal/errors"
	"jobmatcher/internal/types"
)

var (
	wordRe       = regexp.MustCompile(`\w+`)
	experienceRe = regexp.MustCompile(`(\d+)\s+(years?|months?)`)
	educationRe  = regexp.MustCompile(`\b(` + strings.Join(types.EducationVocabulary, "|") + `)\b`)
)

// jobJSON is the optional JSON wrapper schema for a job description blob.
// Title is a pointer so an explicitly empty title can be told apart from an
// absent one; only the absent case falls back to the default.
type jobJSON struct {
	Title       *string `json:"title"`
	Description string  `json:"description"`
}

// Parse converts raw job description blobs into JobRecords, order preserved.
// A blob that opens a JSON object must parse as one; it is never silently
// downgraded to plain text.
func Parse(blobs []string) ([]types.JobRecord, error) {
	records := make([]types.JobRecord, 0, len(blobs))
	for i, blob := range blobs {
		record, err := parseOne(blob)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				return nil, appErr.WithContext("blob_index", i)
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// parseOne decides the blob's source kind exactly once and builds its record.
func parseOne(blob string) (types.JobRecord, error) {
	title := "N/A"
	description := blob
	source := types.JobSourcePlainText

	if looksLikeJSON(blob) {
		var wrapped jobJSON
		if err := json.Unmarshal([]byte(blob), &wrapped); err != nil {
			return types.JobRecord{}, errors.NewParseError(errors.ErrCodeMalformedJobInput,
				fmt.Sprintf("Job input looks like JSON but is not a valid object: %v", err), err)
		}
		source = types.JobSourceJSON
		description = wrapped.Description
		if wrapped.Title != nil {
			title = *wrapped.Title
		}
	}

	return types.JobRecord{
		Title:             title,
		Description:       description,
		Source:            source,
		RequirementTokens: requirementTokens(description),
		ExperienceEntries: experienceEntries(description),
		EducationRequired: educationRequired(description),
	}, nil
}

// looksLikeJSON reports whether the blob opens a JSON object. Only objects
// count; the wrapper schema has no other top-level shape.
func looksLikeJSON(blob string) bool {
	return strings.HasPrefix(strings.TrimSpace(blob), "{")
}

// requirementTokens returns every word run in the description, in order,
// duplicates retained. The raw count is the matching denominator.
func requirementTokens(description string) []string {
	return wordRe.FindAllString(description, -1)
}

// experienceEntries returns (quantity, unit) pairs with the unit verbatim.
// Units are not converted here; the matcher sums quantities as-is.
func experienceEntries(description string) []types.ExperienceEntry {
	matches := experienceRe.FindAllStringSubmatch(description, -1)
	entries := make([]types.ExperienceEntry, 0, len(matches))
	for _, m := range matches {
		quantity, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, types.ExperienceEntry{Quantity: quantity, Unit: m[2]})
	}
	return entries
}

// educationRequired returns every vocabulary keyword occurrence in order,
// duplicates retained; the matcher treats the sequence as a membership set.
func educationRequired(description string) []string {
	return educationRe.FindAllString(description, -1)
}
