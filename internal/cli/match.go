package cli

import (
	"context"
	"fmt"

	"jobmatcher/internal/common"
	"jobmatcher/internal/nlp"
	"jobmatcher/internal/pipeline"
	"jobmatcher/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-file] [job-file...]",
	Short: "Match a resume against one or more job descriptions",
	Long: `Match a resume against one or more job descriptions and report how well
the candidate fits each position. The resume and job files may be PDF, DOCX,
plain text or JSON documents.

The report includes:
- Skills match percentage per job
- Experience fit (years required vs. years held)
- Education fit against the job's stated requirements
- The single best-fitting job across all inputs`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = matchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	p := pipeline.New(nlp.NewProseTagger(), nil, logger)

	createInput := func(contents []string) (types.MatchRequest, error) {
		if len(contents) < 2 {
			return types.MatchRequest{}, fmt.Errorf("expected a resume file and at least 1 job file, got %d files", len(contents))
		}
		jobs := contents[1:]
		if cfg.App.MaxJobCount > 0 && len(jobs) > cfg.App.MaxJobCount {
			return types.MatchRequest{}, fmt.Errorf("too many job files: %d (limit is %d)", len(jobs), cfg.App.MaxJobCount)
		}
		return types.MatchRequest{
			ResumeText: contents[0],
			Jobs:       jobs,
		}, nil
	}

	logDetails := func(input types.MatchRequest, cfg common.CommandConfig) {
		logger.Info("Starting resume matching",
			"resume_chars", len(input.ResumeText),
			"job_count", len(input.Jobs),
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input types.MatchRequest) (*types.MatchReport, error) {
		return p.Run(ctx, input.ResumeText, input.Jobs)
	}

	err := common.RunPipelineCommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		createInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}
	logger.Info("Resume matching completed successfully")
	return nil
}
