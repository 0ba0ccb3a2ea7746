package core

import "context"

// The external collaborators are injected behind small interfaces so the
// services can be exercised with canned fakes.

// TextGenerator produces prose from a prompt (adaptive interview questions,
// section copywriting). A nil TextGenerator means no credential is
// configured; callers take their fallback path.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// VisionAnalyzer extracts structured text from an image.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, imagePNG []byte, prompt string) (string, error)
}

// ImageGenerator creates an image from a prompt and returns its URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// PageCapturer drives a headless browser: capturing a live URL, or
// rasterizing an HTML document at the smart-store viewport width.
type PageCapturer interface {
	CapturePage(ctx context.Context, url string) ([]byte, error)
	RenderPNG(ctx context.Context, html string) ([]byte, error)
}
