package generatecode

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-elhaag/canvas-smith/modules/common/imaging"
	"github.com/a-elhaag/canvas-smith/modules/common/openai"
)

func testImage() *imaging.Normalized {
	return &imaging.Normalized{
		Data:   []byte{0x89, 0x50, 0x4e, 0x47},
		Format: "png",
		Width:  640,
		Height: 480,
	}
}

func TestBuildPayloadShape(t *testing.T) {
	payload := BuildPayload(testImage(), "vue", "make it dark", 6000)

	require.Len(t, payload.Messages, 2)
	assert.Equal(t, openai.RoleSystem, payload.Messages[0].Role)
	assert.Equal(t, openai.RoleUser, payload.Messages[1].Role)

	assert.Equal(t, 6000, payload.MaxCompletionTokens)
	assert.Equal(t, 0.95, payload.TopP)
	assert.Zero(t, payload.FrequencyPenalty)
	assert.Zero(t, payload.PresencePenalty)

	parts, ok := payload.Messages[1].Content.([]openai.ContentPart)
	require.True(t, ok, "user message carries content parts")
	require.Len(t, parts, 2)

	assert.Equal(t, "text", parts[0].Type)
	assert.Contains(t, parts[0].Text, "make it dark")
	assert.Contains(t, parts[0].Text, "ANALYSIS REQUIREMENTS")

	assert.Equal(t, "image_url", parts[1].Type)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "high", parts[1].ImageURL.Detail)

	wantURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testImage().Data)
	assert.Equal(t, wantURI, parts[1].ImageURL.URL)
}

func TestBuildPayloadDefaultInstructions(t *testing.T) {
	payload := BuildPayload(testImage(), "html", "", 6000)

	parts := payload.Messages[1].Content.([]openai.ContentPart)
	assert.Contains(t, parts[0].Text, defaultUserPrompt)
}

func TestBuildPayloadDeterministic(t *testing.T) {
	a := BuildPayload(testImage(), "react", "same input", 4000)
	b := BuildPayload(testImage(), "react", "same input", 4000)
	assert.Equal(t, a, b)
}

func TestSystemPromptVariesByFramework(t *testing.T) {
	vue := systemPrompt("vue")
	react := systemPrompt("react")
	assert.NotEqual(t, vue, react)

	assert.Contains(t, strings.ToLower(vue), "vue")
	assert.Contains(t, strings.ToLower(react), "react")

	// Fixed sections stay identical across frameworks.
	assert.Contains(t, vue, "OUTPUT FORMAT:")
	assert.Contains(t, react, "OUTPUT FORMAT:")
}

func TestSystemPromptUnknownFrameworkFallsBack(t *testing.T) {
	// Unknown frameworks are rejected upstream by validation; the builder
	// still degrades gracefully rather than emitting an empty target.
	got := systemPrompt("not-a-framework")
	assert.Contains(t, strings.ToLower(got), "vue")
}
