package classify

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client is the LLM surface the classifier needs: one system-prompted
// completion per call. Tests swap in a fake.
type Client interface {
	CreateMessage(ctx context.Context, system, user string) (string, error)
}

type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient wraps the Anthropic SDK behind the Client interface.
func NewClient(apiKey, model string, maxTokens int64) Client {
	return &sdkClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *sdkClient) CreateMessage(ctx context.Context, system, user string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: system},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
		// Low temperature keeps the per-line JSON format stable.
		Temperature: sdk.Float(0.1),
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
