package generatecode

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/a-elhaag/canvas-smith/modules/common/config"
	"github.com/a-elhaag/canvas-smith/modules/common/imaging"
	"github.com/a-elhaag/canvas-smith/modules/common/openai"
)

// Recorder is the slice of the metrics collector the service needs.
type Recorder interface {
	RecordGeneration(framework string, totalTokens int, costUSD float64, elapsed time.Duration, hasAnimations, success bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordGeneration(string, int, float64, time.Duration, bool, bool) {}

type Service struct {
	cfg     *config.Config
	client  *openai.Client
	metrics Recorder
}

func NewService(cfg *config.Config, client *openai.Client, metrics Recorder) *Service {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{
		cfg:     cfg,
		client:  client,
		metrics: metrics,
	}
}

// GenerateFromSketch runs the full pipeline: validate inputs, normalize the
// sketch, build the prompt, call the model, and analyze the completion.
// Failures carry a stable kind; the inference request is never sent when a
// local validation step fails.
func (s *Service) GenerateFromSketch(ctx context.Context, imageData []byte, contentType, filename, framework, instructions string) (*GenerationResult, error) {
	start := time.Now()

	framework, err := ValidateFramework(framework)
	if err != nil {
		return nil, err
	}

	instructions, err = SanitizeInstructions(instructions)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Normalize(imageData, contentType, filename, imaging.Limits{
		MaxBytes:     s.cfg.MaxImageSize,
		MaxWidth:     s.cfg.MaxImageWidth,
		MaxHeight:    s.cfg.MaxImageHeight,
		AllowedTypes: s.cfg.AllowedTypes,
	})
	if err != nil {
		log.Printf("❌ Image normalization failed (%s): %v", filename, err)
		return nil, err
	}

	log.Printf("🎨 Generating %s code from %s sketch (%dx%d, %d bytes)",
		framework, img.Format, img.Width, img.Height, len(img.Data))

	payload := BuildPayload(img, framework, instructions, s.cfg.AIMaxTokens)

	resp, err := s.client.CreateChatCompletion(ctx, payload)
	if err != nil {
		s.metrics.RecordGeneration(framework, 0, 0, time.Since(start), false, false)
		log.Printf("❌ Generation failed after %v: %v", time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}

	code, reason, usage := ParseCompletion(resp)
	cost := EstimateCost(usage.PromptTokens, usage.CompletionTokens)
	elapsed := time.Since(start)

	result := &GenerationResult{
		Code:             code,
		Model:            "azure-openai-" + s.client.Deployment(),
		FinishReason:     reason,
		TokenUsage:       usage,
		EstimatedCostUSD: cost,
		Analysis:         AnalyzeComponent(code),
		ProcessingTimeMS: elapsed.Milliseconds(),
		Metadata: GenerationMetadata{
			Framework:       framework,
			ImageSizeBytes:  len(img.Data),
			ImageFormat:     img.Format,
			UserPrompt:      instructions,
			HasAnimations:   HasAnimations(code),
			HasHoverEffects: HasHoverEffects(code),
			MaxTokens:       s.cfg.AIMaxTokens,
			APIVersion:      s.cfg.AzureOpenAIAPIVersion,
			TopP:            0.95,
		},
	}

	s.metrics.RecordGeneration(framework, usage.TotalTokens, cost, elapsed, result.Metadata.HasAnimations, true)

	log.Printf("✅ Generated %d chars of %s code in %v (tokens: %d, cost: $%.6f, finish: %s)",
		len(code), framework, elapsed.Round(time.Millisecond), usage.TotalTokens, cost, reason)

	if reason == FinishLength {
		log.Printf("⚠️ Completion truncated at %d tokens; consider raising AI_MAX_TOKENS", usage.CompletionTokens)
	}

	return result, nil
}

// HealthCheck probes the upstream endpoint with a single lightweight request.
type HealthReport struct {
	Status         string `json:"status"`
	Deployment     string `json:"deployment"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	LatencyMS      int64  `json:"latency_ms"`
	Error          string `json:"error,omitempty"`
}

func (s *Service) HealthCheck(ctx context.Context) HealthReport {
	status, elapsed, err := s.client.Ping(ctx)

	report := HealthReport{
		Status:         "healthy",
		Deployment:     s.client.Deployment(),
		UpstreamStatus: status,
		LatencyMS:      elapsed.Milliseconds(),
	}
	switch {
	case err != nil:
		report.Status = "unhealthy"
		report.Error = err.Error()
	case status == http.StatusTooManyRequests:
		// Throttled but reachable.
		report.Status = "degraded"
	case status != http.StatusOK:
		report.Status = "unhealthy"
	}
	return report
}

// ConfigCheck reports whether the upstream credentials are present, without
// leaking their values.
func (s *Service) ConfigCheck() map[string]interface{} {
	return map[string]interface{}{
		"endpoint_configured":   s.cfg.AzureOpenAIEndpoint != "",
		"api_key_configured":    s.cfg.AzureOpenAIKey != "",
		"deployment":            s.cfg.AzureOpenAIDeployment,
		"api_version":           s.cfg.AzureOpenAIAPIVersion,
		"max_tokens":            s.cfg.AIMaxTokens,
		"timeout_seconds":       s.cfg.AITimeout.Seconds(),
		"max_retries":           s.cfg.AIMaxRetries,
		"max_image_size_bytes":  s.cfg.MaxImageSize,
		"allowed_content_types": s.cfg.AllowedTypes,
	}
}
