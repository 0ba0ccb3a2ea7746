package core

import "context"

type fakeTextGen struct {
	fn func(prompt string) (string, error)
}

func (f *fakeTextGen) GenerateText(_ context.Context, prompt string) (string, error) {
	return f.fn(prompt)
}

type fakeVision struct {
	response string
	err      error
}

func (f *fakeVision) AnalyzeImage(_ context.Context, _ []byte, _ string) (string, error) {
	return f.response, f.err
}

type fakeImageGen struct {
	url     string
	err     error
	prompts []string
}

func (f *fakeImageGen) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.url, f.err
}

type fakeBrowser struct {
	captured []byte
	rendered []byte
	err      error
}

func (f *fakeBrowser) CapturePage(_ context.Context, _ string) ([]byte, error) {
	return f.captured, f.err
}

func (f *fakeBrowser) RenderPNG(_ context.Context, _ string) ([]byte, error) {
	return f.rendered, f.err
}
