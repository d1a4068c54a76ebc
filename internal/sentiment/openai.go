package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type OpenAIClassifier struct {
	client openAIChatClient
	model  string
}

// NewOpenAIClassifier returns nil when apiKey is empty.
func NewOpenAIClassifier(apiKey string, model string) *OpenAIClassifier {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClassifier{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (c *OpenAIClassifier) ClassifyBatch(ctx context.Context, inputs []Input) ([]Result, error) {
	if c == nil || c.client == nil || len(inputs) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for _, in := range inputs {
		sb.WriteString(fmt.Sprintf("id=%d\n", in.ArticleID))
		sb.WriteString(fmt.Sprintf("text=%s\n\n", strings.TrimSpace(in.Text)))
	}

	systemPrompt := "You classify the sentiment of crypto news headlines. Return ONLY a JSON array. Each object requires: id (int), label (NEGATIVE|NEUTRAL|POSITIVE), score (0..1 confidence in the label). No markdown."
	userPrompt := "Articles:\n" + sb.String()

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty classifier completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)

	var parsed []struct {
		ID    int64   `json:"id"`
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse classifier json: %w", err)
	}

	known := make(map[int64]struct{}, len(inputs))
	for _, in := range inputs {
		known[in.ArticleID] = struct{}{}
	}

	out := make([]Result, 0, len(parsed))
	for _, row := range parsed {
		if _, ok := known[row.ID]; !ok {
			continue
		}
		out = append(out, Result{
			ArticleID: row.ID,
			Label:     NormalizeLabel(row.Label),
			Score:     clamp(row.Score, 0, 1),
			Model:     "llm:" + c.model,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID < out[j].ArticleID })
	return out, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
