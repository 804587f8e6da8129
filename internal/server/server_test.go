package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
	"careercatalyst/internal/observability"
	"careercatalyst/internal/types"
)

const sampleResume = `John Doe
john.doe@example.com | 555-123-4567

Summary
Backend engineer with five years of Go experience.

Experience
- Built REST APIs serving 1M requests per day
- Reduced deployment time by 40%

Education
B.S. Computer Science, State University

Skills
Go, PostgreSQL, Docker, Kubernetes

Projects
- Open source contributor to several CNCF projects`

func newTestConfig() *config.Config {
	return &config.Config{
		Jobs: config.JobsConfig{
			BaseURL:   "https://internshala.com",
			MaxPages:  1,
			Timeout:   5 * time.Second,
			UserAgent: "test-agent",
		},
		Observability: config.ObservabilityConfig{
			Enabled: false,
			HealthCheck: config.HealthCheckConfig{
				Timeout: 2 * time.Second,
			},
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, serverCfg ServerConfig) (*Server, *http.ServeMux) {
	t.Helper()

	logger, err := errors.New("error")
	require.NoError(t, err)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	require.NoError(t, err)

	s := NewServer(cfg, serverCfg, logger)
	s.TokenSink = observability.NewTokenRecorder(om)

	return s, s.setupRoutes(om)
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeResumeEndpoint(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	rec := postJSON(t, mux, "/analyze-resume", AnalyzeResumeRequest{
		ResumeText:     sampleResume,
		JobDescription: "Looking for a Go backend engineer with Kubernetes experience",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	// No API key configured, so the fallback analysis drives the score
	assert.True(t, report.HasJobDescription)
	assert.GreaterOrEqual(t, report.TotalScore, 15)
	assert.LessOrEqual(t, report.TotalScore, 95)
	assert.NotEmpty(t, report.ScoreCategory)
	assert.NotEmpty(t, report.Suggestions)
	assert.NotEmpty(t, report.MarkdownReport)
	assert.Len(t, append(report.DetectedSections.Present, report.DetectedSections.Missing...), 8)
}

func TestAnalyzeResumeMissingText(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	rec := postJSON(t, mux, "/analyze-resume", AnalyzeResumeRequest{ResumeText: "   "})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Missing resume text", errResp.Error)
}

func TestAnalyzeResumeRejectsWrongContentType(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume", strings.NewReader("resume"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuickAnalyzeIsAlwaysGeneralMode(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	rec := postJSON(t, mux, "/analyze-resume-quick", QuickAnalyzeRequest{ResumeText: sampleResume})

	require.Equal(t, http.StatusOK, rec.Code)

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.False(t, report.HasJobDescription)
	assert.Nil(t, report.SkillsAnalysis.KeywordMatchPercentage)
}

func TestAssistantEndpoint(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	rec := postJSON(t, mux, "/ai-assistant", AssistantRequest{
		Message:    "How do I improve my skills section?",
		ResumeText: sampleResume,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var out types.AssistantOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	// Without an API key the canned fallback reply is served
	assert.NotEmpty(t, out.Response)
}

func TestAssistantMissingMessage(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	rec := postJSON(t, mux, "/ai-assistant", AssistantRequest{})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Missing message", errResp.Error)
}

func multipartBody(t *testing.T, fileField, fileName, fileContent string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(fileContent))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestAnalyzeResumeFileEndpoint(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	body, contentType := multipartBody(t, "resume_file", "resume.txt", sampleResume,
		map[string]string{"job_description_text": "Go backend engineer"})

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.HasJobDescription)
	assert.GreaterOrEqual(t, report.TotalScore, 15)
}

func TestAnalyzeResumeFileUnsupportedType(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	body, contentType := multipartBody(t, "resume_file", "resume.odt", "resume content", nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Unsupported file type", errResp.Error)
	assert.Equal(t, "Only PDF, DOCX, and TXT files are supported", errResp.Message)
}

func TestAnalyzeResumeFileMissingFile(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("job_description_text", "Go engineer"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobsEndpoint(t *testing.T) {
	listings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<div class="individual_internship">
  <div class="heading_4_5">Backend Intern</div>
  <a class="link_display_like_text">Acme</a>
</div>
</body></html>`))
	}))
	defer listings.Close()

	cfg := newTestConfig()
	cfg.Jobs.BaseURL = listings.URL

	_, mux := newTestServer(t, cfg, ServerConfig{MaxRequestSize: 1 << 20})

	req := httptest.NewRequest(http.MethodGet, "/jobs?role=backend&location=delhi", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Jobs     []types.JobListing `json:"jobs"`
		Count    int                `json:"count"`
		Role     string             `json:"role"`
		Location string             `json:"location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, "backend", response.Role)
	assert.Equal(t, "delhi", response.Location)
	require.Len(t, response.Jobs, 1)
	assert.Equal(t, "Backend Intern", response.Jobs[0].Title)
	assert.Equal(t, "Acme", response.Jobs[0].Company)
}

func TestJobsEndpointRejectsPost(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "careercatalyst", stats["service"])
	assert.Contains(t, stats, "rate_limiting")
	assert.Contains(t, stats, "jobs")
}

func TestHealthEndpointDegradedWithoutAPIKey(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 1 << 20})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// No API key means the AI models report unavailable
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "careercatalyst", health["service"])
	assert.Equal(t, "degraded", health["status"])
	assert.Contains(t, health, "ai_models")
	assert.Contains(t, health, "circuit_breakers")
}

func TestAuthMiddleware(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{
		MaxRequestSize: 1 << 20,
		APIKeys:        []string{"secret-key-12345"},
	})

	tests := []struct {
		name       string
		header     map[string]string
		wantStatus int
	}{
		{
			name:       "missing key",
			header:     nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid key",
			header:     map[string]string{"X-API-Key": "wrong-key"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid key",
			header:     map[string]string{"X-API-Key": "secret-key-12345"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid bearer token",
			header:     map[string]string{"Authorization": "Bearer secret-key-12345"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(AnalyzeResumeRequest{ResumeText: sampleResume})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/analyze-resume", bytes.NewReader(data))
			req.Header.Set("Content-Type", "application/json")
			for key, value := range tt.header {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequestSizeLimit(t *testing.T) {
	_, mux := newTestServer(t, newTestConfig(), ServerConfig{MaxRequestSize: 256})

	rec := postJSON(t, mux, "/analyze-resume", AnalyzeResumeRequest{
		ResumeText: strings.Repeat("a", 1024),
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"short key", "abc", "****"},
		{"exact boundary", "12345678", "****"},
		{"long key", "secret-key-12345", "secret-k****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.key))
		})
	}
}
