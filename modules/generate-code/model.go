package generatecode

// FinishReason explains why generation stopped.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishNoChoices     FinishReason = "no_choices"
	FinishOther         FinishReason = "other"
)

// TokenUsage mirrors the endpoint's usage record. The total is reported by
// the service, not recomputed; it is not guaranteed to equal prompt +
// completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// InteractiveElements counts interaction markers found in generated code.
type InteractiveElements struct {
	Buttons int `json:"buttons"`
	Forms   int `json:"forms"`
	Inputs  int `json:"inputs"`
	Links   int `json:"links"`
}

// AnimationFeatures counts motion markers.
type AnimationFeatures struct {
	VueTransitions int `json:"vue_transitions"`
	CSSAnimations  int `json:"css_animations"`
	HoverEffects   int `json:"hover_effects"`
}

// StylingFeatures flags how the component is styled.
type StylingFeatures struct {
	TailwindClasses bool `json:"tailwind_classes"`
	CustomCSS       bool `json:"custom_css"`
	ScopedStyles    bool `json:"scoped_styles"`
}

// ReactiveFeatures flags reactive-programming idioms.
type ReactiveFeatures struct {
	ReactiveData       bool `json:"reactive_data"`
	ComputedProperties bool `json:"computed_properties"`
	Watchers           bool `json:"watchers"`
	LifecycleHooks     bool `json:"lifecycle_hooks"`
}

// ComponentAnalysis is a heuristic substring scan of the generated code, not
// a parse: counts and flags are approximate by design.
type ComponentAnalysis struct {
	ComponentType  string              `json:"component_type"`
	HasScriptSetup bool                `json:"has_script_setup"`
	HasTypeScript  bool                `json:"has_typescript"`
	Interactive    InteractiveElements `json:"interactive_elements"`
	Animations     AnimationFeatures   `json:"animations"`
	Styling        StylingFeatures     `json:"styling"`
	VueFeatures    ReactiveFeatures    `json:"vue_features"`
}

// GenerationMetadata carries request context alongside the result. Every
// field is declared here; nothing is merged in from loose maps downstream.
type GenerationMetadata struct {
	Framework       string  `json:"framework"`
	ImageSizeBytes  int     `json:"image_size_bytes"`
	ImageFormat     string  `json:"image_format"`
	UserPrompt      string  `json:"user_prompt"`
	HasAnimations   bool    `json:"has_animations"`
	HasHoverEffects bool    `json:"has_hover_effects"`
	MaxTokens       int     `json:"max_tokens"`
	APIVersion      string  `json:"model_version"`
	TopP            float64 `json:"top_p"`
}

// GenerationResult is the immutable outcome of one pipeline run.
type GenerationResult struct {
	Code             string             `json:"code"`
	Model            string             `json:"model"`
	FinishReason     FinishReason       `json:"finish_reason"`
	TokenUsage       TokenUsage         `json:"token_usage"`
	EstimatedCostUSD float64            `json:"estimated_cost_usd"`
	Analysis         ComponentAnalysis  `json:"component_analysis"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
	Metadata         GenerationMetadata `json:"metadata"`
}

// GenerateCodeResponse is the HTTP payload for a successful generation.
type GenerateCodeResponse struct {
	Success       bool              `json:"success"`
	GeneratedCode string            `json:"generated_code"`
	Framework     string            `json:"framework"`
	Result        *GenerationResult `json:"result"`
	Timestamp     string            `json:"timestamp"`
}

// ErrorResponse is the boundary shape for every failure: a stable kind plus
// a human-readable message, never a stack trace.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// FrameworkInfo describes one supported generation target.
type FrameworkInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
