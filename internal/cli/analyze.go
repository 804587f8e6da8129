package cli

import (
	"fmt"

	"careercatalyst/internal/common"

	"github.com/spf13/cobra"
)

var analyzeConfig common.CommandConfig

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Analyze a resume for ATS compatibility",
	Long: `Analyze a resume for ATS (Applicant Tracking System) compatibility.
The command takes the path to a resume file (PDF, DOCX, or plain text) and
optionally the path to a job description file. With a job description the
analysis is job-matched; without one it is a general assessment.

The analysis includes:
- An overall ATS compatibility score from 15 to 95
- Detected and missing resume sections
- Formatting issues that confuse ATS parsers
- Keyword matching against the job description
- AI-generated improvement suggestions`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: resolveAnalyzeFormat,
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveAnalyzeFormat fills the default output format and rejects
// unsupported ones before the analysis runs
func resolveAnalyzeFormat(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if analyzeConfig.OutputFormat == "" {
		analyzeConfig.OutputFormat = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	resumeFile := args[0]
	jobFile := ""
	if len(args) == 2 {
		jobFile = args[1]
	}

	if err := common.RunAnalysisCommand(cmd.Context(), cfg, logger, analyzeConfig, resumeFile, jobFile); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
