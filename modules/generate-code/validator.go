package generatecode

import (
	"regexp"
	"strings"

	"github.com/a-elhaag/canvas-smith/modules/common/apperr"
)

const maxInstructionLength = 1000

var allowedFrameworks = map[string]bool{
	"html":      true,
	"react":     true,
	"vue":       true,
	"angular":   true,
	"tailwind":  true,
	"bootstrap": true,
	"svelte":    true,
	"nextjs":    true,
}

// Patterns stripped from user instructions before they reach the prompt.
var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
}

// ValidateFramework normalizes and checks the target framework name.
func ValidateFramework(framework string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(framework))
	if normalized == "" {
		normalized = "html"
	}
	if !allowedFrameworks[normalized] {
		return "", apperr.New(apperr.KindInvalidFramework,
			"unsupported framework %q", framework)
	}
	return normalized, nil
}

// SanitizeInstructions bounds and cleans optional free-text instructions.
// Markup/script fragments are removed rather than rejected; only over-length
// input is an error.
func SanitizeInstructions(instructions string) (string, error) {
	if instructions == "" {
		return "", nil
	}
	if len(instructions) > maxInstructionLength {
		return "", apperr.New(apperr.KindInstructionsTooLong,
			"additional instructions too long (max %d characters)", maxInstructionLength)
	}

	cleaned := instructions
	for _, pattern := range harmfulPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned), nil
}

// SupportedFrameworks lists the generation targets for the API.
func SupportedFrameworks() []FrameworkInfo {
	return []FrameworkInfo{
		{ID: "html", Name: "HTML/CSS", Description: "Pure HTML with inline or embedded CSS"},
		{ID: "react", Name: "React", Description: "React components with JSX and CSS"},
		{ID: "vue", Name: "Vue.js", Description: "Vue.js single file components"},
		{ID: "angular", Name: "Angular", Description: "Angular components with TypeScript"},
		{ID: "tailwind", Name: "HTML + Tailwind CSS", Description: "HTML with Tailwind CSS utility classes"},
		{ID: "bootstrap", Name: "HTML + Bootstrap", Description: "HTML with Bootstrap framework"},
		{ID: "svelte", Name: "Svelte", Description: "Svelte single-file components"},
		{ID: "nextjs", Name: "Next.js", Description: "Next.js page components"},
	}
}
