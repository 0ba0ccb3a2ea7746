package store

import "time"

// Session statuses. "cancelled" is a legal column value but no operation
// currently sets it.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Output formats for a generation request.
const (
	OutputHTML  = "html"
	OutputImage = "image"
	OutputBoth  = "both"
)

type Session struct {
	ID        string    `json:"id"` // UUID
	Status    string    `json:"status"`
	Context   Context   `json:"context"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GenerationHistory struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	ProductName  string    `json:"product_name"`
	OutputFormat string    `json:"output_format"` // html, image, both
	HTMLContent  *string   `json:"html_content,omitempty"`
	ImagePath    *string   `json:"image_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalysisResult is the structured output of a reference page analysis.
type AnalysisResult struct {
	LayoutPattern string            `json:"layout_pattern"`
	ColorScheme   map[string]string `json:"color_scheme"`
	Sections      []string          `json:"sections"`
	Highlights    []string          `json:"highlights"`
	ToneAndManner string            `json:"tone_and_manner"`
}

type ReferenceAnalysis struct {
	ID             int64          `json:"id"`
	URL            string         `json:"url"`
	ScreenshotPath string         `json:"screenshot_path"`
	Result         AnalysisResult `json:"analysis_result"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Template struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"` // fashion, food, electronics, etc.
	Description  *string   `json:"description,omitempty"`
	HTMLTemplate string    `json:"html_template"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}
