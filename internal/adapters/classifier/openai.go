package classifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mikey/spam-gateway/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const spamPrompt = `You are a spam detection system. Analyze the following raw email and decide if it is spam.
Respond with exactly one word: SPAM or HAM.

Email:
%s`

// OpenAIClassifier is a Classifier implementation using an OpenAI model
type OpenAIClassifier struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	maxBodySize int
	logger      *zap.Logger
}

// NewOpenAIClassifier creates a new OpenAI-backed classifier
func NewOpenAIClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	maxBodySize int,
	logger *zap.Logger,
) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}

	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		maxBodySize: maxBodySize,
		logger:      logger,
	}, nil
}

// Classify asks the model for a one-word spam determination and maps it
// onto the result-code contract
func (c *OpenAIClassifier) Classify(ctx context.Context, payload []byte) (int, error) {
	body := truncateUTF8(string(payload), c.maxBodySize)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.modelName,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(spamPrompt, body),
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai returned no choices")
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	c.logger.Debug("OpenAI classification completed",
		zap.String("model", c.modelName),
		zap.String("answer", answer))

	switch answer {
	case "SPAM":
		return core.ResultSpam, nil
	case "HAM":
		return core.ResultHam, nil
	default:
		return 0, fmt.Errorf("unexpected model answer %q", answer)
	}
}

// truncateUTF8 truncates text to at most maxSize bytes without splitting
// a multi-byte rune
func truncateUTF8(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}
	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}
