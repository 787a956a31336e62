package openai

// Wire types for the Azure OpenAI chat completions endpoint.

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatRequest is the JSON body POSTed to the deployment. Immutable once
// built by the prompt builder.
type ChatRequest struct {
	Messages            []Message `json:"messages"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
	TopP                float64   `json:"top_p"`
	FrequencyPenalty    float64   `json:"frequency_penalty"`
	PresencePenalty     float64   `json:"presence_penalty"`
}

// Message content is either a plain string (system messages) or a sequence
// of ContentPart (user messages carrying an image).
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// TextPart builds a {type:"text"} content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds a {type:"image_url"} content part from a data URI.
func ImagePart(dataURI, detail string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURI, Detail: detail}}
}

// ChatResponse is the raw completion returned by the endpoint. Choices and
// usage are both reported-not-guaranteed; absence is handled downstream.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
