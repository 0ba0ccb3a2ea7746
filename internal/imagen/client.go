package imagen

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the OpenAI image API behind the core ImageGenerator port.
type Client struct {
	client *openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{client: openai.NewClient(apiKey)}
}

// GenerateImage renders the prompt with DALL-E 3 and returns the hosted
// image URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:   openai.CreateImageModelDallE3,
		Prompt:  prompt,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image generation returned no image")
	}
	return resp.Data[0].URL, nil
}
