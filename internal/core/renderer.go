package core

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HyunjoonKwak/page-maker/internal/store"
)

// The five copy sections of a detail page, in page order. The descriptor is
// what the copywriting prompt and the fallback table are keyed by.
var copySections = []struct {
	Key        string
	Descriptor string
}{
	{"hero", "히어로 섹션 (메인 타이틀, 서브 타이틀)"},
	{"features", "특징/장점 섹션"},
	{"benefits", "고객 혜택 섹션"},
	{"details", "상세 정보 섹션"},
	{"cta", "구매 유도 섹션"},
}

// fallbackCopy returns the static per-section default used when the copy
// generator is unavailable or fails.
func fallbackCopy(descriptor, productName string) string {
	switch descriptor {
	case "히어로 섹션 (메인 타이틀, 서브 타이틀)":
		return productName + "과 함께하는 특별한 경험"
	case "특징/장점 섹션":
		return "최고의 품질과 합리적인 가격"
	case "고객 혜택 섹션":
		return "고객 만족을 위해 최선을 다합니다"
	case "상세 정보 섹션":
		return "상세한 정보는 판매자에게 문의해주세요"
	case "구매 유도 섹션":
		return "지금 바로 만나보세요"
	}
	return ""
}

const copywritingPromptFormat = `
상품 정보:
- 상품명: %s
- 카테고리: %s
- 타겟 고객: %s
- 차별점(USP): %s
- 가격/프로모션: %s
- 분위기: %s

위 정보를 바탕으로 상세페이지의 "%s" 섹션에 들어갈
매력적인 카피라이팅을 작성해주세요.

- 타겟 고객의 언어로 작성
- 감성적이면서도 정보 전달이 명확하게
- 적절한 이모지 사용 가능
`

// pageData is what a detail page template is filled with. Substitution goes
// through html/template, so every field is HTML-escaped on output.
type pageData struct {
	ProductName    string
	Category       string
	TargetCustomer string
	USP            string
	PriceInfo      string
	Mood           string
	ProductImages  []string
	Sections       map[string]string
}

// Renderer builds the final document: copywriting for the five sections,
// category-based template selection, template fill.
type Renderer struct {
	templatesDir string
	textGen      TextGenerator // nil when no credential is configured
}

func NewRenderer(templatesDir string, textGen TextGenerator) *Renderer {
	return &Renderer{templatesDir: templatesDir, textGen: textGen}
}

// GenerateDetailPage renders a complete HTML document from the session
// context. templateID is accepted for API compatibility but selection is by
// category lookup.
func (r *Renderer) GenerateDetailPage(ctx context.Context, contextMap store.Context, templateID *int64) (string, error) {
	sections := r.generateSections(ctx, contextMap)

	tmpl, err := r.selectTemplate(contextMap.GetString("category", "기타"))
	if err != nil {
		return "", err
	}

	data := pageData{
		ProductName:    contextMap.GetString("product_name", ""),
		Category:       contextMap.GetString("category", ""),
		TargetCustomer: contextMap.GetString("target_customer", ""),
		USP:            contextMap.GetString("usp", ""),
		PriceInfo:      contextMap.GetString("price_info", ""),
		Mood:           contextMap.GetString("mood", ""),
		ProductImages:  contextMap.GetList("product_images"),
		Sections:       sections,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// generateSections fans the five copy calls out concurrently and joins them.
// Each section falls back independently; one failed AI call never aborts the
// page or its sibling sections.
func (r *Renderer) generateSections(ctx context.Context, contextMap store.Context) map[string]string {
	sections := make(map[string]string, len(copySections))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, section := range copySections {
		wg.Add(1)
		go func(key, descriptor string) {
			defer wg.Done()
			text := r.sectionCopy(ctx, contextMap, descriptor)
			mu.Lock()
			sections[key] = text
			mu.Unlock()
		}(section.Key, section.Descriptor)
	}
	wg.Wait()
	return sections
}

func (r *Renderer) sectionCopy(ctx context.Context, contextMap store.Context, descriptor string) string {
	productName := contextMap.GetString("product_name", "제품")
	if r.textGen == nil {
		return fallbackCopy(descriptor, productName)
	}

	prompt := fmt.Sprintf(copywritingPromptFormat,
		contextMap.GetString("product_name", ""),
		contextMap.GetString("category", ""),
		contextMap.GetString("target_customer", ""),
		contextMap.GetString("usp", ""),
		contextMap.GetString("price_info", ""),
		contextMap.GetString("mood", ""),
		descriptor,
	)

	text, err := r.textGen.GenerateText(ctx, prompt)
	if err != nil {
		log.Printf("Copywriting failed for section %q, using fallback: %v", descriptor, err)
		return fallbackCopy(descriptor, productName)
	}
	return strings.TrimSpace(text)
}

// selectTemplate resolves {category}.html in the templates directory, falling
// back to default.html. The lookup is case-insensitive on the category; a
// missing default.html fails the render.
func (r *Renderer) selectTemplate(category string) (*template.Template, error) {
	name := strings.ToLower(category) + ".html"
	path := filepath.Join(r.templatesDir, name)
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(r.templatesDir, "default.html")
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	return tmpl, nil
}
