package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ViewportWidth is the smart-store recommended detail page width in logical
// pixels. Height is provisional until the document's real scroll height is
// measured.
const (
	ViewportWidth      = 860
	provisionalHeight  = 10000
	defaultTaskTimeout = 90 * time.Second
)

// Browser drives headless Chrome for page capture and HTML rasterization.
// Each call runs in its own browser context; failures are propagated, not
// retried.
type Browser struct {
	timeout time.Duration
}

func New() *Browser {
	return &Browser{timeout: defaultTaskTimeout}
}

// CapturePage loads the URL at the fixed viewport width, waits for network
// idle, and returns a full-page PNG.
func (b *Browser) CapturePage(ctx context.Context, url string) ([]byte, error) {
	var screenshot []byte
	err := b.run(ctx,
		chromedp.EmulateViewport(ViewportWidth, provisionalHeight),
		navigateAndWaitIdle(url),
		chromedp.FullScreenshot(&screenshot, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("page capture failed: %w", err)
	}
	return screenshot, nil
}

// RenderPNG loads an HTML document, waits for network idle so images and
// fonts are in, measures the rendered scroll height, resizes the viewport to
// that exact height, and captures a full-page PNG.
func (b *Browser) RenderPNG(ctx context.Context, html string) ([]byte, error) {
	dataURL := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var screenshot []byte
	var height int64
	err := b.run(ctx,
		chromedp.EmulateViewport(ViewportWidth, provisionalHeight),
		navigateAndWaitIdle(dataURL),
		chromedp.Evaluate("document.body.scrollHeight", &height),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if height < 1 {
				height = 1
			}
			return chromedp.EmulateViewport(ViewportWidth, height).Do(ctx)
		}),
		chromedp.FullScreenshot(&screenshot, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("html rasterization failed: %w", err)
	}
	return screenshot, nil
}

// navigateAndWaitIdle navigates and blocks until the page fires the
// networkIdle lifecycle event, so subresources (product images, fonts) are
// loaded before anything is measured or captured. DOM readiness alone would
// let a half-loaded page through.
func navigateAndWaitIdle(url string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		idle := make(chan struct{})
		var once sync.Once

		listenCtx, cancelListen := context.WithCancel(ctx)
		defer cancelListen()
		chromedp.ListenTarget(listenCtx, func(ev any) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
				once.Do(func() { close(idle) })
			}
		})

		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}
		if err := chromedp.Navigate(url).Do(ctx); err != nil {
			return err
		}

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	return chromedp.Run(taskCtx, actions...)
}
