package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HyunjoonKwak/page-maker/internal/store"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

const minimalTemplate = `<html><body>
<h1>{{.ProductName}}</h1>
<p>{{index .Sections "hero"}}</p>
<p>{{index .Sections "features"}}</p>
<p>{{index .Sections "benefits"}}</p>
<p>{{index .Sections "details"}}</p>
<p>{{index .Sections "cta"}}</p>
<strong>{{.PriceInfo}}</strong>
</body></html>`

func TestGenerateDetailPage_FallbackCopy(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"default.html": minimalTemplate})
	r := NewRenderer(dir, nil) // no copy generator configured

	html, err := r.GenerateDetailPage(context.Background(), store.Context{
		"product_name": store.StringValue("테스트상품"),
		"price_info":   store.StringValue("19,900원"),
	}, nil)
	require.NoError(t, err)

	assert.Contains(t, html, "테스트상품과 함께하는 특별한 경험")
	assert.Contains(t, html, "지금 바로 만나보세요")
	assert.Contains(t, html, "19,900원")
}

func TestGenerateDetailPage_TemplateSelection(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"default.html": `<html>DEFAULT {{.ProductName}}</html>`,
		"food.html":    `<html>FOOD {{.ProductName}}</html>`,
	})
	r := NewRenderer(dir, nil)

	tests := []struct {
		category string
		marker   string
	}{
		{"food", "FOOD"},
		{"Food", "FOOD"}, // case-insensitive
		{"electronics", "DEFAULT"},
		{"기타", "DEFAULT"},
		{"", "DEFAULT"}, // absent category defaults to 기타
	}
	for _, tt := range tests {
		contextMap := store.Context{"product_name": store.StringValue("상품")}
		if tt.category != "" {
			contextMap["category"] = store.StringValue(tt.category)
		}
		html, err := r.GenerateDetailPage(context.Background(), contextMap, nil)
		require.NoError(t, err)
		assert.Contains(t, html, tt.marker, "category %q", tt.category)
	}
}

func TestGenerateDetailPage_MissingDefaultTemplateFails(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)

	_, err := r.GenerateDetailPage(context.Background(), store.Context{}, nil)
	assert.Error(t, err)
}

func TestGenerateDetailPage_EscapesSubstitutions(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"default.html": minimalTemplate})
	r := NewRenderer(dir, nil)

	html, err := r.GenerateDetailPage(context.Background(), store.Context{
		"product_name": store.StringValue(`<script>alert("x")</script>`),
		"price_info":   store.StringValue("1 < 2원"),
	}, nil)
	require.NoError(t, err)

	assert.NotContains(t, html, `<script>alert`)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "1 &lt; 2원")
}

func TestGenerateDetailPage_PerSectionFallback(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"default.html": minimalTemplate})

	// Fail only the hero call; every other section gets AI copy
	gen := &fakeTextGen{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "히어로 섹션") {
			return "", errors.New("upstream error")
		}
		return "AI 카피", nil
	}}
	r := NewRenderer(dir, gen)

	html, err := r.GenerateDetailPage(context.Background(), store.Context{
		"product_name": store.StringValue("테스트상품"),
	}, nil)
	require.NoError(t, err)

	assert.Contains(t, html, "테스트상품과 함께하는 특별한 경험", "failed section falls back")
	assert.Contains(t, html, "AI 카피", "other sections keep their AI copy")
	assert.NotContains(t, html, "지금 바로 만나보세요", "cta did not fall back")
}

func TestGenerateDetailPage_AllSectionsRequested(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"default.html": minimalTemplate})

	var mu sync.Mutex
	seen := map[string]bool{}
	gen := &fakeTextGen{fn: func(prompt string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		for _, section := range copySections {
			if strings.Contains(prompt, section.Descriptor) {
				seen[section.Key] = true
			}
		}
		return "ok", nil
	}}
	r := NewRenderer(dir, gen)

	_, err := r.GenerateDetailPage(context.Background(), store.Context{
		"product_name": store.StringValue("상품"),
	}, nil)
	require.NoError(t, err)
	assert.Len(t, seen, 5)
}
