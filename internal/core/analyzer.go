package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/HyunjoonKwak/page-maker/internal/store"
	"github.com/google/uuid"
)

const visionAnalysisPrompt = `이 스마트스토어 상세페이지 이미지를 분석해주세요.
다음 항목들을 JSON 형식으로 응답해주세요:

{
    "layout_pattern": "레이아웃 패턴 설명 (섹션 배치, 여백, 정렬)",
    "color_scheme": {
        "primary": "#색상코드",
        "secondary": "#색상코드",
        "background": "#색상코드",
        "accent": "#색상코드"
    },
    "sections": ["섹션1", "섹션2", ...],
    "highlights": ["눈에 띄는 디자인 요소1", ...],
    "tone_and_manner": "전체적인 톤앤매너 (고급스러운/캐주얼/귀여운 등)"
}
`

// emptyAnalysis is what an unparseable vision response degrades to; analysis
// never fails on a malformed model reply.
func emptyAnalysis() store.AnalysisResult {
	return store.AnalysisResult{
		LayoutPattern: "분석 실패",
		ColorScheme:   map[string]string{},
		Sections:      []string{},
		Highlights:    []string{},
		ToneAndManner: "",
	}
}

// AnalyzerService captures a competitor page and extracts layout, color, and
// tone features from the screenshot for inspiration.
type AnalyzerService struct {
	dbStore        *store.SQLiteStore
	capturer       PageCapturer
	vision         VisionAnalyzer
	screenshotsDir string
}

func NewAnalyzerService(db *store.SQLiteStore, capturer PageCapturer, vision VisionAnalyzer, screenshotsDir string) *AnalyzerService {
	return &AnalyzerService{
		dbStore:        db,
		capturer:       capturer,
		vision:         vision,
		screenshotsDir: screenshotsDir,
	}
}

// Analyze screenshots the URL, persists the capture, runs vision extraction,
// and records the result. Capture and vision transport errors are fatal for
// the call; a malformed vision reply only degrades the analysis.
func (s *AnalyzerService) Analyze(ctx context.Context, url string) (*store.ReferenceAnalysis, error) {
	screenshot, err := s.capturer.CapturePage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}

	if err := os.MkdirAll(s.screenshotsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshots directory: %w", err)
	}
	screenshotPath := filepath.Join(s.screenshotsDir, uuid.NewString()+".png")
	if err := os.WriteFile(screenshotPath, screenshot, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save screenshot: %w", err)
	}

	result, err := s.analyzeScreenshot(ctx, screenshot)
	if err != nil {
		return nil, err
	}

	analysis := &store.ReferenceAnalysis{
		URL:            url,
		ScreenshotPath: screenshotPath,
		Result:         result,
	}
	if err := s.dbStore.CreateReferenceAnalysis(analysis); err != nil {
		return nil, fmt.Errorf("failed to record analysis: %w", err)
	}
	return analysis, nil
}

func (s *AnalyzerService) analyzeScreenshot(ctx context.Context, screenshot []byte) (store.AnalysisResult, error) {
	if s.vision == nil {
		log.Println("No vision analyzer configured; returning empty analysis")
		return emptyAnalysis(), nil
	}

	response, err := s.vision.AnalyzeImage(ctx, screenshot, visionAnalysisPrompt)
	if err != nil {
		return store.AnalysisResult{}, fmt.Errorf("vision analysis failed: %w", err)
	}

	var result store.AnalysisResult
	if err := json.Unmarshal([]byte(stripJSONFences(response)), &result); err != nil {
		log.Printf("Could not parse vision analysis response, using empty result: %v", err)
		return emptyAnalysis(), nil
	}
	if result.ColorScheme == nil {
		result.ColorScheme = map[string]string{}
	}
	if result.Sections == nil {
		result.Sections = []string{}
	}
	if result.Highlights == nil {
		result.Highlights = []string{}
	}
	return result, nil
}
