package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundGenerate_PromptComposition(t *testing.T) {
	gen := &fakeImageGen{url: "https://images.example.com/bg.png"}
	svc := NewBackgroundService(gen)

	url, err := svc.Generate(context.Background(), "food", "luxury", "warm orange", "include steam")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/bg.png", url)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "appetizing food photography background")
	assert.Contains(t, prompt, "luxurious, premium, gold accents, sophisticated")
	assert.Contains(t, prompt, "Color scheme: warm orange")
	assert.Contains(t, prompt, "Additional requirements: include steam")
	assert.Contains(t, prompt, "No text or logos")
}

func TestBackgroundGenerate_UnknownCategoryAndMood(t *testing.T) {
	gen := &fakeImageGen{url: "https://images.example.com/bg.png"}
	svc := NewBackgroundService(gen)

	_, err := svc.Generate(context.Background(), "books", "mysterious", "", "")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "product photography background")
	assert.Contains(t, gen.prompts[0], "modern and clean")
	assert.NotContains(t, gen.prompts[0], "Color scheme:")
}

func TestBackgroundGenerate_NoGeneratorConfigured(t *testing.T) {
	svc := NewBackgroundService(nil)

	_, err := svc.Generate(context.Background(), "food", "luxury", "", "")
	assert.ErrorIs(t, err, ErrNoImageGenerator)
}
