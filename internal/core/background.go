package core

import (
	"context"
	"fmt"
	"strings"
)

// Per-category base prompts and per-mood style fragments for background
// image generation.
var categoryPrompts = map[string]string{
	"fashion":     "elegant fashion product photography background",
	"beauty":      "clean minimal beauty cosmetics background",
	"food":        "appetizing food photography background",
	"electronics": "modern tech product background",
	"home":        "cozy home lifestyle background",
}

var moodStyles = map[string]string{
	"luxury":       "luxurious, premium, gold accents, sophisticated",
	"casual":       "casual, friendly, warm colors, approachable",
	"cute":         "cute, playful, pastel colors, kawaii style",
	"simple":       "minimalist, clean, white space, modern",
	"professional": "professional, corporate, trustworthy, clean",
}

// BackgroundService wraps the image generator for standalone background
// images.
type BackgroundService struct {
	imageGen ImageGenerator // nil when no credential is configured
}

func NewBackgroundService(imageGen ImageGenerator) *BackgroundService {
	return &BackgroundService{imageGen: imageGen}
}

// Generate builds the prompt from the category/mood tables and returns the
// generated image URL.
func (s *BackgroundService) Generate(ctx context.Context, category, mood, colorScheme, customPrompt string) (string, error) {
	if s.imageGen == nil {
		return "", ErrNoImageGenerator
	}

	basePrompt, ok := categoryPrompts[category]
	if !ok {
		basePrompt = "product photography background"
	}
	moodStyle, ok := moodStyles[mood]
	if !ok {
		moodStyle = "modern and clean"
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, `
    Create a background image for an e-commerce product detail page.
    Style: %s
    Mood: %s
    `, basePrompt, moodStyle)

	if colorScheme != "" {
		fmt.Fprintf(&prompt, "\nColor scheme: %s", colorScheme)
	}
	if customPrompt != "" {
		fmt.Fprintf(&prompt, "\nAdditional requirements: %s", customPrompt)
	}

	prompt.WriteString(`

    Requirements:
    - Clean and professional
    - Suitable for overlaying product images
    - No text or logos
    - Subtle gradients or patterns
    - High quality, 1024x1024
    `)

	return s.imageGen.GenerateImage(ctx, prompt.String())
}
