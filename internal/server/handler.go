package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"careercatalyst/internal/ai"
	"careercatalyst/internal/ats"
	ccErrors "careercatalyst/internal/errors"
	"careercatalyst/internal/extract"
	"careercatalyst/internal/observability"
	"careercatalyst/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// apiSpan opens a span for one API operation on the shared tracer
func apiSpan(om *observability.ObservabilityManager, r *http.Request, operation string) (context.Context, trace.Span) {
	tracer := om.Tracer("careercatalyst.api")
	return tracer.Start(r.Context(), "api."+operation)
}

// rejectRequest records a client error on the span and answers 400
func rejectRequest(w http.ResponseWriter, span trace.Span, title, detail string) {
	span.RecordError(fmt.Errorf("%s: %s", title, detail))
	span.SetAttributes(attribute.String("error.type", "validation"))
	writeErrorResponse(w, title, detail, http.StatusBadRequest)
}

// writeJSON encodes the response body, recording encode failures on the span
func writeJSON(w http.ResponseWriter, span trace.Span, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// runAnalyzeRequest builds a per-request analysis service, runs the scoring
// pipeline and writes the report. The extra attributes land on the business
// metric and the span alongside the score.
func (s *Server) runAnalyzeRequest(ctx context.Context, w http.ResponseWriter, span trace.Span, om *observability.ObservabilityManager, resumeText, jobDescription string, attrs ...attribute.KeyValue) {
	analyzeConfig := s.AppConfig.GetAnalyzeConfig()
	aiService, err := ai.NewService(&analyzeConfig, "analyze", s.Logger)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "service_creation"))
		writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
		return
	}
	aiService.SetTokenSink(s.TokenSink)
	defer func() { _ = aiService.Close() }()

	analyzer := ats.NewAnalyzer(aiService, s.Logger)

	var report *types.AnalysisReport
	// Analysis never fails outward; degraded AI calls surface inside the report
	om.TimeAIOperation(ctx, "analyze_resume", func(ctx context.Context) {
		report = analyzer.Analyze(ctx, resumeText, jobDescription)
	})

	attrs = append(attrs,
		attribute.Int("score.total", report.TotalScore),
		attribute.Bool("request.has_job_description", report.HasJobDescription))
	om.GetMetrics().RecordBusinessMetric(ctx, "resume_analyzed", true, om, attrs...)

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("score.total", report.TotalScore),
		attribute.String("score.category", report.ScoreCategory),
	)

	writeJSON(w, span, report)
}

// createAnalyzeResumeHandler scores pasted resume text against an optional
// job description
func (s *Server) createAnalyzeResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := apiSpan(om, r, "analyze_resume")
		defer span.End()

		var req AnalyzeResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			rejectRequest(w, span, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.ResumeText) == "" {
			rejectRequest(w, span, "Missing resume text", "resume_text field is required")
			return
		}

		// Either text alone can consume at most half the request budget
		halfBudget := int(s.MaxRequestSize / 2)
		if len(req.ResumeText) > halfBudget {
			rejectRequest(w, span, "Resume text too large",
				fmt.Sprintf("resume_text exceeds recommended size limit of %d characters", halfBudget))
			return
		}
		if len(req.JobDescription) > halfBudget {
			rejectRequest(w, span, "Job description too large",
				fmt.Sprintf("job_description exceeds recommended size limit of %d characters", halfBudget))
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "analyze_resume"),
		)

		s.runAnalyzeRequest(ctx, w, span, om, req.ResumeText, req.JobDescription)
	}
}

// createAnalyzeResumeFileHandler handles multipart resume uploads. The job
// description may arrive as a text field or as a second file.
func (s *Server) createAnalyzeResumeFileHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := apiSpan(om, r, "analyze_resume_file")
		defer span.End()

		maxMemory := s.MaxRequestSize
		if maxMemory <= 0 {
			maxMemory = 32 << 20
		}
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			rejectRequest(w, span, "Invalid multipart request", err.Error())
			return
		}

		metrics := om.GetMetrics()

		resumeText, fileName, err := s.extractUploadedFile(r, "resume_file")
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "file_extracted", false, om,
				attribute.String("file.field", "resume_file"))
			writeExtractionError(w, err)
			return
		}
		if strings.TrimSpace(resumeText) == "" {
			rejectRequest(w, span, "Empty resume", "Could not extract text from the resume file")
			return
		}

		metrics.RecordBusinessMetric(ctx, "file_extracted", true, om,
			attribute.String("file.field", "resume_file"))

		jobDescription := r.FormValue("job_description_text")
		if jobDescription == "" {
			if _, _, ferr := r.FormFile("job_description_file"); ferr == nil {
				jobDescription, _, err = s.extractUploadedFile(r, "job_description_file")
				if err != nil {
					span.RecordError(err)
					metrics.RecordBusinessMetric(ctx, "file_extracted", false, om,
						attribute.String("file.field", "job_description_file"))
					writeExtractionError(w, err)
					return
				}
				metrics.RecordBusinessMetric(ctx, "file_extracted", true, om,
					attribute.String("file.field", "job_description_file"))
			}
		}

		span.SetAttributes(
			attribute.String("request.resume_file", fileName),
			attribute.Int("request.resume_length", len(resumeText)),
			attribute.String("operation", "analyze_resume_file"),
		)

		s.runAnalyzeRequest(ctx, w, span, om, resumeText, jobDescription)
	}
}

// createQuickAnalyzeHandler runs a general-mode analysis without a job description
func (s *Server) createQuickAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := apiSpan(om, r, "analyze_resume_quick")
		defer span.End()

		var req QuickAnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			rejectRequest(w, span, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.ResumeText) == "" {
			rejectRequest(w, span, "Missing resume text", "resume_text field is required")
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "analyze_resume_quick"),
		)

		// Quick mode is always general analysis, any job description is ignored
		s.runAnalyzeRequest(ctx, w, span, om, req.ResumeText, "",
			attribute.String("mode", "quick"))
	}
}

// createAssistantHandler answers career-advice chat messages
func (s *Server) createAssistantHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := apiSpan(om, r, "ai_assistant")
		defer span.End()

		var req AssistantRequest
		if err := parseJSONRequest(r, &req); err != nil {
			rejectRequest(w, span, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			rejectRequest(w, span, "Missing message", "message field is required")
			return
		}

		span.SetAttributes(
			attribute.Int("request.message_length", len(req.Message)),
			attribute.Bool("request.has_resume", strings.TrimSpace(req.ResumeText) != ""),
			attribute.String("operation", "assistant_chat"),
		)

		assistantConfig := s.AppConfig.GetAssistantConfig()
		aiService, err := ai.NewService(&assistantConfig, "assistant", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}
		aiService.SetTokenSink(s.TokenSink)
		defer func() { _ = aiService.Close() }()

		var result types.AssistantOutput
		// Chat degrades to canned replies internally and never fails outward
		om.TimeAIOperation(ctx, "assistant_chat", func(ctx context.Context) {
			result = aiService.Chat(ctx, types.AssistantInput{
				Message:    req.Message,
				ResumeText: req.ResumeText,
			})
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "assistant_chat", true, om,
			attribute.Int("response.length", len(result.Response)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.length", len(result.Response)),
		)

		writeJSON(w, span, result)
	}
}

// createJobsHandler serves internship listings scraped from the aggregator
func (s *Server) createJobsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx, span := apiSpan(om, r, "jobs")
		defer span.End()

		role := r.URL.Query().Get("role")
		location := r.URL.Query().Get("location")

		span.SetAttributes(
			attribute.String("request.role", role),
			attribute.String("request.location", location),
			attribute.String("operation", "jobs_fetch"),
		)

		metrics := om.GetMetrics()
		listings, err := s.Jobs.Fetch(ctx, role, location)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "jobs_fetched", false, om)
			writeErrorResponse(w, "Failed to fetch job listings", err.Error(), http.StatusBadGateway)
			return
		}

		metrics.RecordBusinessMetric(ctx, "jobs_fetched", true, om,
			attribute.Int("jobs.count", len(listings)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("jobs.count", len(listings)),
		)

		writeJSON(w, span, map[string]any{
			"jobs":     listings,
			"count":    len(listings),
			"role":     role,
			"location": location,
		})
	}
}

// extractUploadedFile reads a multipart file field and extracts its text
func (s *Server) extractUploadedFile(r *http.Request, field string) (string, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", ccErrors.NewValidationError(ccErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s file field is required", field), err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", ccErrors.NewExtractError(ccErrors.ErrCodeExtractionFailed,
			"failed to read uploaded file", err)
	}

	text, err := extract.FromFile(header.Filename, data)
	if err != nil {
		return "", "", err
	}
	return text, header.Filename, nil
}

// writeExtractionError maps extraction failures to HTTP status codes
func writeExtractionError(w http.ResponseWriter, err error) {
	var appErr *ccErrors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case ccErrors.ErrCodeUnsupportedFile:
			writeErrorResponse(w, "Unsupported file type", "Only PDF, DOCX, and TXT files are supported", http.StatusBadRequest)
			return
		case ccErrors.ErrCodeInvalidRequest:
			writeErrorResponse(w, "Missing file", appErr.Message, http.StatusBadRequest)
			return
		}
	}
	writeErrorResponse(w, "File processing failed", err.Error(), http.StatusInternalServerError)
}

// createRateLimitMiddleware records a metric whenever the limiter answers 429
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	limit := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return limit(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next(recorder, r)

			if recorder.status == http.StatusTooManyRequests {
				om.GetMetrics().RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// statusRecorder captures the response status for post-request metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}
