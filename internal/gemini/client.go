package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultTextModelName   = "gemini-1.5-flash-latest"
	defaultVisionModelName = "gemini-1.5-flash-latest"
)

// Client wraps the Gemini API behind the core text/vision ports.
type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// GenerateText runs a single-turn completion.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(defaultTextModelName)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}
	return textFromResponse(resp)
}

// AnalyzeImage sends a PNG plus an extraction prompt to the vision model.
func (c *Client) AnalyzeImage(ctx context.Context, imagePNG []byte, prompt string) (string, error) {
	model := c.client.GenerativeModel(defaultVisionModelName)

	resp, err := model.GenerateContent(ctx, genai.ImageData("png", imagePNG), genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini vision request failed: %w", err)
	}
	return textFromResponse(resp)
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}
	return responseText.String(), nil
}
