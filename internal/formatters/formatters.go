package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobmatcher/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MatchReport", &MatchReportTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchReport", &MatchReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeFacts", &ResumeFactsTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeFacts", &ResumeFactsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchReport, *types.MatchReport:
		return "MatchReport"
	case types.ResumeFacts:
		return "ResumeFacts"
	default:
		return "any"
	}
}

func asMatchReport(data any) (types.MatchReport, bool) {
	switch v := data.(type) {
	case types.MatchReport:
		return v, true
	case *types.MatchReport:
		if v != nil {
			return *v, true
		}
	}
	return types.MatchReport{}, false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// MatchReportTextFormatter handles text formatting for match reports
type MatchReportTextFormatter struct{}

func (mtf *MatchReportTextFormatter) Format(data any) (string, error) {
	report, ok := asMatchReport(data)
	if !ok {
		return "", fmt.Errorf("expected MatchReport, got %T", data)
	}

	var output strings.Builder

	if report.BestFit != nil {
		best := report.BestFit
		output.WriteString("=== BEST JOB FIT ===\n\n")
		output.WriteString(fmt.Sprintf("Job Title: %s\n", best.JobTitle))
		output.WriteString(fmt.Sprintf("Job Description: %s\n", best.JobDescription))
		output.WriteString(fmt.Sprintf("Skills Match Percentage: %.2f%%\n", best.SkillsMatchPercentage))
		output.WriteString(fmt.Sprintf("Experience Match: %s (Required: %g years)\n",
			yesNo(best.ExperienceMatch), best.TotalExperienceRequired))
		output.WriteString(fmt.Sprintf("Education Match: %s\n", yesNo(best.EducationMatch)))
		output.WriteString("\n")
	} else {
		output.WriteString("No job descriptions to match against.\n\n")
	}

	if len(report.Results) > 0 {
		output.WriteString("=== ALL RESULTS ===\n\n")
		for i, r := range report.Results {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.JobTitle))
			output.WriteString(fmt.Sprintf("   Skills Match: %.2f%%\n", r.SkillsMatchPercentage))
			output.WriteString(fmt.Sprintf("   Experience Match: %s (Required: %g)\n",
				yesNo(r.ExperienceMatch), r.TotalExperienceRequired))
			output.WriteString(fmt.Sprintf("   Education Match: %s\n", yesNo(r.EducationMatch)))
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (mtf *MatchReportTextFormatter) SupportedType() string {
	return "MatchReport"
}

// MatchReportMarkdownFormatter handles markdown formatting for match reports
type MatchReportMarkdownFormatter struct{}

func (mmf *MatchReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := asMatchReport(data)
	if !ok {
		return "", fmt.Errorf("expected MatchReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Job Match Report\n\n")

	if report.BestFit != nil {
		best := report.BestFit
		output.WriteString("## Best Job Fit\n\n")
		output.WriteString(fmt.Sprintf("**Job Title:** %s\n\n", best.JobTitle))
		output.WriteString(fmt.Sprintf("**Job Description:** %s\n\n", best.JobDescription))
		output.WriteString(fmt.Sprintf("**Skills Match Percentage:** %.2f%%\n\n", best.SkillsMatchPercentage))
		output.WriteString(fmt.Sprintf("**Experience Match:** %s (Required: %g years)\n\n",
			yesNo(best.ExperienceMatch), best.TotalExperienceRequired))
		output.WriteString(fmt.Sprintf("**Education Match:** %s\n\n", yesNo(best.EducationMatch)))
	} else {
		output.WriteString("No job descriptions to match against.\n\n")
	}

	if len(report.Results) > 0 {
		output.WriteString("## All Results\n\n")
		output.WriteString("| # | Job Title | Skills Match | Experience | Education |\n")
		output.WriteString("|---|-----------|--------------|------------|----------|\n")
		for i, r := range report.Results {
			output.WriteString(fmt.Sprintf("| %d | %s | %.2f%% | %s | %s |\n",
				i+1, r.JobTitle, r.SkillsMatchPercentage,
				yesNo(r.ExperienceMatch), yesNo(r.EducationMatch)))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (mmf *MatchReportMarkdownFormatter) SupportedType() string {
	return "MatchReport"
}

// ResumeFactsTextFormatter handles text formatting for extracted resume facts
type ResumeFactsTextFormatter struct{}

func (rtf *ResumeFactsTextFormatter) Format(data any) (string, error) {
	facts, ok := data.(types.ResumeFacts)
	if !ok {
		return "", fmt.Errorf("expected ResumeFacts, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME FACTS ===\n\n")
	output.WriteString(fmt.Sprintf("Total Experience: %g years\n\n", facts.TotalExperienceYears))

	output.WriteString("Education:\n")
	if len(facts.Education) == 0 {
		output.WriteString("  (none found)\n")
	}
	for _, e := range facts.Education {
		output.WriteString(fmt.Sprintf("  - %s\n", e))
	}
	output.WriteString("\n")

	output.WriteString(fmt.Sprintf("Skills (%d):\n", len(facts.Skills)))
	for _, s := range facts.Skills {
		output.WriteString(fmt.Sprintf("  - %s\n", s))
	}

	return output.String(), nil
}

func (rtf *ResumeFactsTextFormatter) SupportedType() string {
	return "ResumeFacts"
}

// ResumeFactsMarkdownFormatter handles markdown formatting for resume facts
type ResumeFactsMarkdownFormatter struct{}

func (rmf *ResumeFactsMarkdownFormatter) Format(data any) (string, error) {
	facts, ok := data.(types.ResumeFacts)
	if !ok {
		return "", fmt.Errorf("expected ResumeFacts, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Facts\n\n")
	output.WriteString(fmt.Sprintf("**Total Experience:** %g years\n\n", facts.TotalExperienceYears))

	output.WriteString("## Education\n\n")
	if len(facts.Education) == 0 {
		output.WriteString("_None found._\n\n")
	}
	for _, e := range facts.Education {
		output.WriteString(fmt.Sprintf("- %s\n", e))
	}
	if len(facts.Education) > 0 {
		output.WriteString("\n")
	}

	output.WriteString(fmt.Sprintf("## Skills (%d)\n\n", len(facts.Skills)))
	for _, s := range facts.Skills {
		output.WriteString(fmt.Sprintf("- %s\n", s))
	}

	return output.String(), nil
}

func (rmf *ResumeFactsMarkdownFormatter) SupportedType() string {
	return "ResumeFacts"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
