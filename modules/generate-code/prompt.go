package generatecode

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/a-elhaag/canvas-smith/modules/common/imaging"
	"github.com/a-elhaag/canvas-smith/modules/common/openai"
)

// Prompt construction is pure: same image, framework, instructions and
// parameters always produce the same payload. No I/O happens here.

const defaultUserPrompt = "Analyze this hand-drawn website sketch and create a complete, functional component. " +
	"Focus on predicting what each UI element should do and produce production-ready code."

var frameworkDescriptions = map[string]string{
	"html":      "a single self-contained HTML page with embedded CSS and vanilla JavaScript",
	"react":     "a React function component using hooks, with JSX and CSS",
	"vue":       "a Vue.js 3 Single File Component using the Composition API with <script setup>",
	"angular":   "an Angular component with TypeScript, template and styles",
	"tailwind":  "a single HTML page styled entirely with Tailwind CSS utility classes",
	"bootstrap": "a single HTML page built on the Bootstrap framework",
	"svelte":    "a Svelte single-file component with reactive declarations",
	"nextjs":    "a Next.js page component with React hooks and CSS modules",
}

// systemPrompt describes the target code style for the model. The detail
// varies per framework only in the target line; the mission and output
// contract stay fixed so results are comparable across frameworks.
func systemPrompt(framework string) string {
	target := frameworkDescriptions[framework]
	if target == "" {
		target = frameworkDescriptions["vue"]
	}

	return fmt.Sprintf(`You are an expert front-end developer and UI/UX designer specializing in creating interactive, animated web components from sketches.

CORE MISSION: Transform hand-drawn sketches into %s with:
1. **Smart Component Prediction**: Analyze the sketch to predict component functionality
2. **Interactive Elements**: Add appropriate click handlers, form submissions, navigation
3. **Smooth Animations**: Implement transitions and CSS animations
4. **Hover Effects**: Add engaging hover states for interactive elements
5. **Motion Design**: Use CSS transforms, transitions, and state-driven animations

COMPONENT INTELLIGENCE:
- **Buttons**: Predict actions (submit, navigate, toggle, etc.) based on placement and context
- **Forms**: Add validation, submission handling, and success states
- **Cards**: Include hover animations, click interactions
- **Navigation**: Implement active states, smooth scrolling
- **Images**: Add lazy loading, hover zoom effects
- **Lists**: Include item animations, filtering capabilities

ANIMATION GUIDELINES:
- Use framework-native transition primitives for state changes
- Implement CSS transforms for hover effects
- Add spring-like animations for user interactions
- Include entrance animations for page elements
- Use appropriate easing functions (cubic-bezier)

OUTPUT FORMAT:
Return ONLY the complete component code with:
- Reactive data and methods where the framework provides them
- CSS with animations and transitions
- Comprehensive functionality prediction

Do not include explanations, markdown formatting, or code blocks - just the raw component code.`, target)
}

// userPrompt appends the fixed analysis requirements to the caller's
// (already sanitized) instructions.
func userPrompt(instructions string) string {
	effective := strings.TrimSpace(instructions)
	if effective == "" {
		effective = defaultUserPrompt
	}

	return effective + `

ANALYSIS REQUIREMENTS:
1. **Visual Elements**: Identify all UI components, layout structure, and content areas
2. **Functional Prediction**: Determine what each button/element should do based on context
3. **User Flow**: Predict the intended user interactions and navigation
4. **Component Behavior**: Add appropriate reactive data and methods

IMPLEMENTATION REQUIREMENTS:
- Create a modern, interactive component with animations and hover effects
- Add predicted functionality for interactive elements and connect actions to appropriate handlers
- Implement responsive design principles and accessibility best practices

Create a production-ready component that brings this sketch to life with engaging interactions and animations.`
}

// BuildPayload assembles the inference payload: system instruction, then a
// user message of instruction text plus the embedded sketch as a data URI.
func BuildPayload(img *imaging.Normalized, framework, instructions string, maxTokens int) *openai.ChatRequest {
	dataURI := fmt.Sprintf("data:image/%s;base64,%s",
		img.Format, base64.StdEncoding.EncodeToString(img.Data))

	return &openai.ChatRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: systemPrompt(framework)},
			{Role: openai.RoleUser, Content: []openai.ContentPart{
				openai.TextPart(userPrompt(instructions)),
				openai.ImagePart(dataURI, "high"),
			}},
		},
		MaxCompletionTokens: maxTokens,
		TopP:                0.95,
		FrequencyPenalty:    0.0,
		PresencePenalty:     0.0,
	}
}
