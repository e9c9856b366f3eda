package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider translates with an OpenAI-compatible chat completions API.
// It can also refine drafts produced by another provider.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: DefaultOpenAIModel)
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a batch of texts using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	content, err := p.complete(ctx, p.buildSystemPrompt(req), p.buildUserMessage(req))
	if err != nil {
		return nil, err
	}
	return p.parseResponse(content, len(req.Texts))
}

// Refine asks the model to improve drafts produced by another provider. The
// result has one entry per draft, in order.
func (p *OpenAIProvider) Refine(ctx context.Context, req TranslateRequest, drafts []string) ([]string, error) {
	if len(drafts) == 0 {
		return []string{}, nil
	}
	if len(drafts) != len(req.Texts) {
		return nil, &sitetrans.CountMismatchError{Expected: len(req.Texts), Got: len(drafts)}
	}

	content, err := p.complete(ctx, p.buildRefinePrompt(req), buildRefineMessage(req.Texts, drafts))
	if err != nil {
		return nil, err
	}
	return p.parseResponse(content, len(drafts))
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &sitetrans.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &sitetrans.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) buildRefinePrompt(req TranslateRequest) string {
	targetName := sitetrans.GetLanguageName(req.TargetLang)
	prompt := fmt.Sprintf(`# Role
You are a native %[1]s editor reviewing machine translations of web page text.

# Task
Each item has a "source" string and a "draft" translation into %[1]s. Improve the draft only where it is inaccurate, unnatural or inconsistent; otherwise return it unchanged.

# Rules
- Keep placeholders, URLs, numbers and markup exactly as in the draft.
- Keep leading and trailing whitespace.
- %[2]s`, targetName, sitetrans.GetStyleDescription(req.Style))

	if hint := sitetrans.GetLocaleClarification(req.TargetLang); hint != "" {
		prompt += "\n- " + hint
	}
	if len(req.ExcludedTerms) > 0 {
		prompt += "\n- Never translate: " + strings.Join(req.ExcludedTerms, ", ")
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing the final strings in the same order as the input items.`
	return prompt
}

func buildRefineMessage(sources, drafts []string) string {
	type item struct {
		Source string `json:"source"`
		Draft  string `json:"draft"`
	}
	items := make([]item, len(sources))
	for i := range sources {
		items[i] = item{Source: sources[i], Draft: drafts[i]}
	}
	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}

	targetName := sitetrans.GetLanguageName(req.TargetLang)
	localeHint := sitetrans.GetLocaleClarification(req.TargetLang)

	// Get style description (default to neutral)
	styleDesc := sitetrans.GetStyleDescription(req.Style)

	// Build context section
	contextText := "The content is general web content."
	if req.Context != "" {
		contextText = fmt.Sprintf("The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate %s web content into %s with the fluency and nuance of a highly educated native speaker.

# Context
%s

# Register
%s

# Task
Translate the provided texts into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound completely natural to a native speaker.
- **Vocabulary**: Use precise, culturally relevant terminology. Avoid awkward "translationese" or robotic phrasing.
- **Tone**: Maintain the original intent but adapt the wording to fit the target culture's expectations.
- **Idioms**: Never translate idioms literally. Replace English idioms with natural %s equivalents.
- **HTML/Code Safety**: Do NOT translate HTML tags, class names, IDs, attributes, URLs, email addresses, or content inside backticks or <code> blocks.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve meaningful whitespace (leading/trailing spaces, multiple spaces, newlines). Use idiomatic punctuation for the target language.
- **Context Hints**: If you see {{__ctx__:...}}, use that hint to disambiguate the translation, then REMOVE the hint from your output.`, sitetrans.GetLanguageName(sourceLang), targetName, contextText, styleDesc, targetName, targetName)

	// Add locale clarification if available
	if localeHint != "" {
		prompt += fmt.Sprintf("\n- **Locale**: %s", localeHint)
	}

	// Add user-provided glossary if available
	if len(req.Glossary) > 0 {
		prompt += "\n\n# Glossary\nWhen you encounter these phrases, prefer these translations (unless context demands otherwise):"
		sources := lo.Keys(req.Glossary)
		sort.Strings(sources)
		for _, source := range sources {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", source, req.Glossary[source])
		}
	}

	// Add quality check instruction
	prompt += fmt.Sprintf("\n\n# Quality Check\nAfter translating each string, verify it sounds like native %s and not a calque. If any phrase sounds like a literal translation, rewrite it naturally.", targetName)

	// Add format requirements
	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.
- Do NOT include any {{__ctx__:...}} markers in your output.`

	// Add exclusions if provided
	if len(req.ExcludedTerms) > 0 {
		terms := strings.Join(req.ExcludedTerms, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s", terms)
	}

	return prompt
}

func (p *OpenAIProvider) buildUserMessage(req TranslateRequest) string {
	// If we have per-text contexts, use the object format
	hasContexts := false
	for _, ctx := range req.TextContexts {
		if ctx != "" {
			hasContexts = true
			break
		}
	}

	if !hasContexts {
		// Simple array format
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	// Object format with contexts
	type item struct {
		Text    string `json:"text"`
		Context string `json:"context,omitempty"`
	}

	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Text = text
		if i < len(req.TextContexts) {
			items[i].Context = req.TextContexts[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string, expectedCount int) ([]string, error) {
	// Try parsing as object first
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		// Look for "translations" key
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: find first array value
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	// Try parsing as direct array
	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &sitetrans.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &sitetrans.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	if isContextErr(err) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "connection reset", "temporary", "eof"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var (
	_ Provider = (*OpenAIProvider)(nil)
	_ Refiner  = (*OpenAIProvider)(nil)
)
