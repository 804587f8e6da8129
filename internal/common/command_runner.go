package common

import (
	"context"

	"careercatalyst/internal/ai"
	"careercatalyst/internal/ats"
	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
	"careercatalyst/internal/jobs"
)

// RunAnalysisCommand reads the resume (and optional job description)
// documents, runs the scoring pipeline and writes the formatted report.
func RunAnalysisCommand(ctx context.Context, cfg *config.Config, logger *errors.Logger, cmdConfig CommandConfig, resumeFile, jobFile string) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	resumeText, err := fileProcessor.ReadDocument(resumeFile)
	if err != nil {
		return err
	}

	jobDescription := ""
	if jobFile != "" {
		jobDescription, err = fileProcessor.ReadDocument(jobFile)
		if err != nil {
			return err
		}
	}

	logger.Info("Starting resume analysis",
		"resume_file", resumeFile,
		"has_job_description", jobDescription != "",
		"resume_length", len(resumeText))

	analyzeConfig := cfg.GetAnalyzeConfig()
	aiService, err := ai.NewService(&analyzeConfig, "analyze", logger)
	if err != nil {
		return err
	}
	defer func() { _ = aiService.Close() }()

	analyzer := ats.NewAnalyzer(aiService, logger)
	report := analyzer.Analyze(ctx, resumeText, jobDescription)

	return outputHandler.HandleOutput(report, cmdConfig)
}

// RunJobsCommand fetches internship listings and writes them in the
// requested output format.
func RunJobsCommand(ctx context.Context, cfg *config.Config, logger *errors.Logger, cmdConfig CommandConfig, role, location string) error {
	outputHandler := NewOutputHandler(logger)

	aggregator := jobs.NewAggregator(cfg.Jobs, logger)

	logger.Info("Fetching job listings",
		"role", role,
		"location", location)

	listings, err := aggregator.Fetch(ctx, role, location)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(listings, cmdConfig)
}
