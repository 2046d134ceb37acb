package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	apperrors "github.com/gitgenie/gitgenie/internal/errors"
	"github.com/gitgenie/gitgenie/internal/models"
)

const systemPrompt = "You are a precise code-review assistant. Given the changed files of a git commit, " +
	"rate the commit's impact and respond with ONLY a JSON object, no code fences, no markdown, " +
	"with exactly these fields: " +
	`{"impact": <integer 1-10>, "summary": "<one short line>", "body": "<at most 45 words>"}`

// bodyWordLimit bounds the classifier body field.
const bodyWordLimit = 45

// maxPatchChars caps how much of each patch goes into the prompt so a
// single giant diff cannot blow the context window.
const maxPatchChars = 4000

// chatCompleter is the slice of the OpenAI client the classifier needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClassifier rates commits through an OpenAI-compatible chat
// completion endpoint.
type OpenAIClassifier struct {
	client chatCompleter
	model  string
	logger *logrus.Logger
}

// NewOpenAIClassifier creates a classifier. baseURL may be empty for
// the default OpenAI endpoint, or point at an OpenAI-compatible
// gateway such as OpenRouter.
func NewOpenAIClassifier(apiKey, baseURL, model string, logger *logrus.Logger) *OpenAIClassifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Classify rates a single commit's changed files
func (c *OpenAIClassifier) Classify(ctx context.Context, files []models.ChangedFile) (*Classification, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: renderPrompt(files)},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewSchemaViolationError("classifier returned no choices", nil)
	}

	classification, err := parseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.WithError(err).Warn("Classifier output did not match the expected schema")
		return nil, err
	}

	return classification, nil
}

// renderPrompt flattens the changed files into the user message
func renderPrompt(files []models.ChangedFile) string {
	var b strings.Builder
	b.WriteString("Rate the impact of this commit.\n")
	for _, f := range files {
		fmt.Fprintf(&b, "\n--- %s (%s, +%d -%d)\n", f.Filename, f.Status, f.Additions, f.Deletions)
		patch := f.Patch
		if len(patch) > maxPatchChars {
			patch = patch[:maxPatchChars]
		}
		b.WriteString(patch)
		b.WriteString("\n")
	}
	return b.String()
}

// parseClassification enforces the output schema strictly. Free-form
// text, missing fields, or an out-of-range impact are all schema
// violations, fatal to that single commit.
func parseClassification(content string) (*Classification, error) {
	raw := stripCodeFences(content)

	var parsed struct {
		Impact  *int    `json:"impact"`
		Summary *string `json:"summary"`
		Body    *string `json:"body"`
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return nil, apperrors.NewSchemaViolationError("classifier returned non-JSON output", err)
	}
	// Decode stops at the end of the first value, so trailing prose
	// after the object would otherwise slip through.
	if dec.More() {
		return nil, apperrors.NewSchemaViolationError("classifier returned trailing content after the JSON object", nil)
	}

	if parsed.Impact == nil || parsed.Summary == nil || parsed.Body == nil {
		return nil, apperrors.NewSchemaViolationError("classifier output missing required fields", nil)
	}
	if *parsed.Impact < 1 || *parsed.Impact > 10 {
		return nil, apperrors.NewSchemaViolationError(
			fmt.Sprintf("classifier impact out of range: %d", *parsed.Impact), nil)
	}
	if *parsed.Summary == "" {
		return nil, apperrors.NewSchemaViolationError("classifier summary is empty", nil)
	}

	return &Classification{
		Impact:  *parsed.Impact,
		Summary: *parsed.Summary,
		Body:    truncateWords(*parsed.Body, bodyWordLimit),
	}, nil
}

// stripCodeFences tolerates models that wrap the JSON in ``` fences
// despite the prompt
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ")
}
