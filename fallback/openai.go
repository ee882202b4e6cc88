package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/ghostreader"
	"github.com/sashabaranov/go-openai"
)

// MachineTranslator fills gaps by machine-translating the source-locale text.
//
// The source text is resolved through another fallback (usually a Bundle)
// in SourceLocale, then translated with an OpenAI chat completion.
type MachineTranslator struct {
	source       Fallback
	sourceLocale string
	client       *openai.Client
	model        string
	temperature  float32
	context      string
	glossary     map[string]string
	excluded     []string
	retry        ghostreader.RetryConfig
}

// MachineConfig holds configuration for the machine translator.
type MachineConfig struct {
	APIKey        string            // OpenAI API key
	Model         string            // Model to use (default: "gpt-4o-mini")
	Temperature   float32           // Temperature for generation (default: 0.3)
	BaseURL       string            // Custom base URL (optional)
	SourceLocale  string            // Locale the source text is resolved in (default: "en")
	Context       string            // Description of the content (e.g. "E-commerce website")
	Glossary      map[string]string // Preferred translations for recurring phrases
	ExcludedTerms []string          // Terms that must never be translated
	Retry         *ghostreader.RetryConfig
}

// NewMachineTranslator creates a machine translator on top of source.
func NewMachineTranslator(source Fallback, cfg MachineConfig) *MachineTranslator {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	sourceLocale := cfg.SourceLocale
	if sourceLocale == "" {
		sourceLocale = "en"
	}

	retry := ghostreader.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	return &MachineTranslator{
		source:       source,
		sourceLocale: sourceLocale,
		client:       openai.NewClientWithConfig(config),
		model:        model,
		temperature:  temperature,
		context:      cfg.Context,
		glossary:     cfg.Glossary,
		excluded:     cfg.ExcludedTerms,
		retry:        retry,
	}
}

// Translate resolves key in the source locale and translates it into locale.
// Keys the source cannot resolve are reported as missing without calling OpenAI.
func (m *MachineTranslator) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	value, err := m.source.Translate(ctx, m.sourceLocale, key, opts)
	if err != nil {
		return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: key, Cause: err}
	}

	text, ok := value.(string)
	if !ok {
		return nil, &ghostreader.UnsupportedResultError{Locale: locale, Key: key, Type: fmt.Sprintf("%T", value)}
	}

	if text == "" || ghostreader.SameLanguage(locale, m.sourceLocale) {
		return text, nil
	}

	translated, err := ghostreader.WithRetry(ctx, m.retry, func() (string, error) {
		return m.complete(ctx, locale, text)
	})
	if err != nil {
		return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: key, Cause: err}
	}
	return translated, nil
}

// AvailableLocales forwards to the source when it lists locales.
func (m *MachineTranslator) AvailableLocales() []string {
	if lister, ok := m.source.(ghostreader.LocaleLister); ok {
		return lister.AvailableLocales()
	}
	return nil
}

func (m *MachineTranslator) complete(ctx context.Context, locale, text string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: m.buildSystemPrompt(locale)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: m.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &ghostreader.ClientError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &ghostreader.ClientError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

func (m *MachineTranslator) buildSystemPrompt(locale string) string {
	targetName := ghostreader.LanguageName(locale)
	sourceName := ghostreader.LanguageName(m.sourceLocale)

	contextText := "The text is a user interface string of a web application."
	if m.context != "" {
		contextText = fmt.Sprintf("The text is for: %s. Adapt the tone to be appropriate for this context.", m.context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate %s user interface strings to %s with the fluency of a native speaker.

# Context
%s

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase to sound natural to a native speaker.
- **Brevity**: Interface strings must stay about as short as the original.
- **HTML/Code Safety**: Do NOT translate HTML tags, attributes, URLs, or content inside backticks.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{.Name}}, %%{count}, %%s).
- **Formatting**: Preserve leading and trailing whitespace.`, sourceName, targetName, contextText)

	if ghostreader.IsRTL(locale) {
		prompt += fmt.Sprintf("\n- **Direction**: %s is written right-to-left. Keep embedded Latin terms in their original order.", targetName)
	}

	if len(m.glossary) > 0 {
		sources := make([]string, 0, len(m.glossary))
		for source := range m.glossary {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		prompt += "\n\n# Glossary\nWhen you encounter these phrases, prefer these translations:"
		for _, source := range sources {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", source, m.glossary[source])
		}
	}

	if len(m.excluded) > 0 {
		terms := strings.Join(m.excluded, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nDo NOT translate the following terms:\n- %s", terms)
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.`

	return prompt
}

func parseResponse(content string) (string, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		if s, ok := result["translation"].(string); ok {
			return s, nil
		}
		// Fallback: single string value under any key
		if len(result) == 1 {
			for _, v := range result {
				if s, ok := v.(string); ok {
					return s, nil
				}
			}
		}
	}

	return "", &ghostreader.ClientError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify MachineTranslator implements Fallback
var _ Fallback = (*MachineTranslator)(nil)
