package generatecode

import (
	"math"
	"strings"

	"github.com/a-elhaag/canvas-smith/modules/common/openai"
)

// Approximate per-1K-token rates. These track typical Azure OpenAI pricing;
// actual billing depends on tier and region.
const (
	promptCostPer1K     = 0.03
	completionCostPer1K = 0.06
	costDecimalPlaces   = 6
)

// ParseCompletion extracts code, finish reason and token usage from a raw
// completion. There is no failure path: an empty choices list yields an
// empty-code result with FinishNoChoices, absent usage yields zeros.
func ParseCompletion(resp *openai.ChatResponse) (code string, reason FinishReason, usage TokenUsage) {
	usage = TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	if len(resp.Choices) == 0 {
		return "", FinishNoChoices, usage
	}

	choice := resp.Choices[0]
	return choice.Message.Content, normalizeFinishReason(choice.FinishReason), usage
}

func normalizeFinishReason(raw string) FinishReason {
	switch raw {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	case "content_filter":
		return FinishContentFilter
	default:
		return FinishOther
	}
}

// EstimateCost maps token counts to an estimated cost in USD, rounded to six
// decimal places. Precondition: non-negative inputs.
func EstimateCost(promptTokens, completionTokens int) float64 {
	cost := float64(promptTokens)/1000*promptCostPer1K +
		float64(completionTokens)/1000*completionCostPer1K

	shift := math.Pow(10, costDecimalPlaces)
	return math.Round(cost*shift) / shift
}

// AnalyzeComponent runs the heuristic feature scan over generated code. This
// is a case-insensitive substring count against a fixed vocabulary, not a
// parser; counts are approximate insights, not guarantees.
func AnalyzeComponent(code string) ComponentAnalysis {
	if code == "" {
		return ComponentAnalysis{ComponentType: "unknown"}
	}

	lower := strings.ToLower(code)

	componentType := "unknown"
	if strings.Contains(lower, "<template>") {
		componentType = "vue"
	}

	return ComponentAnalysis{
		ComponentType:  componentType,
		HasScriptSetup: strings.Contains(lower, "<script setup"),
		HasTypeScript:  strings.Contains(lower, "typescript") || strings.Contains(lower, `lang="ts"`),
		Interactive: InteractiveElements{
			Buttons: strings.Count(lower, "button") + strings.Count(lower, "@click"),
			Forms:   strings.Count(lower, "form") + strings.Count(lower, "@submit"),
			Inputs:  strings.Count(lower, "input") + strings.Count(lower, "v-model"),
			Links:   strings.Count(lower, "router-link") + strings.Count(lower, "href"),
		},
		Animations: AnimationFeatures{
			VueTransitions: strings.Count(lower, "<transition") + strings.Count(lower, "transition-"),
			CSSAnimations:  strings.Count(lower, "@keyframes") + strings.Count(lower, "animation:"),
			HoverEffects:   strings.Count(lower, "hover:") + strings.Count(lower, ":hover"),
		},
		Styling: StylingFeatures{
			TailwindClasses: hasTailwindClasses(code, lower),
			CustomCSS:       strings.Contains(lower, "<style"),
			ScopedStyles:    strings.Contains(lower, "scoped"),
		},
		VueFeatures: ReactiveFeatures{
			ReactiveData:       strings.Contains(code, "ref(") || strings.Contains(code, "reactive("),
			ComputedProperties: strings.Contains(code, "computed("),
			Watchers:           strings.Contains(code, "watch("),
			LifecycleHooks:     hasLifecycleHooks(code),
		},
	}
}

func hasTailwindClasses(code, lower string) bool {
	if !strings.Contains(code, "class=") {
		return false
	}
	for _, marker := range []string{"bg-", "text-", "p-", "m-", "flex", "grid"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func hasLifecycleHooks(code string) bool {
	for _, hook := range []string{"onMounted", "onUpdated", "onUnmounted"} {
		if strings.Contains(code, hook) {
			return true
		}
	}
	return false
}

// HasAnimations is the coarse motion flag recorded in metadata and metrics.
func HasAnimations(code string) bool {
	lower := strings.ToLower(code)
	return strings.Contains(lower, "transition") || strings.Contains(lower, "animation")
}

// HasHoverEffects flags hover-state markers in either Tailwind or CSS form.
func HasHoverEffects(code string) bool {
	lower := strings.ToLower(code)
	return strings.Contains(lower, "hover:") || strings.Contains(lower, ":hover")
}
