package cli

import (
	"fmt"

	"careercatalyst/internal/common"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [role] [location]",
	Short: "Fetch internship listings for a role and location",
	Long: `Fetch internship listings from Internshala for a given role and
location. Both arguments are optional; defaults come from the jobs
configuration. Pages that fail to load are skipped, so partial results
are still returned.`,
	Args: cobra.MaximumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if jobsCmdConfig.OutputFormat == "" {
			jobsCmdConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(jobsCmdConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runJobs,
}

var jobsCmdConfig common.CommandConfig

func init() {
	jobsCmd.Flags().StringVarP(&jobsCmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	jobsCmd.Flags().StringVar(&jobsCmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = jobsCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	role := ""
	location := ""
	if len(args) > 0 {
		role = args[0]
	}
	if len(args) > 1 {
		location = args[1]
	}

	err := common.RunJobsCommand(cmd.Context(), cfg, logger, jobsCmdConfig, role, location)
	if err != nil {
		return fmt.Errorf("failed to fetch job listings: %w", err)
	}
	logger.Info("Job listings fetched successfully")
	return nil
}
