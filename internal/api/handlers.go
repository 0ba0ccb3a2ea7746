package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/HyunjoonKwak/page-maker/internal/core"
	"github.com/HyunjoonKwak/page-maker/internal/store"
)

type APIHandler struct {
	interview  *core.InterviewService
	generation *core.GenerationService
	background *core.BackgroundService
	analyzer   *core.AnalyzerService
	dbStore    *store.SQLiteStore
}

func NewAPIHandler(
	interview *core.InterviewService,
	generation *core.GenerationService,
	background *core.BackgroundService,
	analyzer *core.AnalyzerService,
	dbStore *store.SQLiteStore,
) *APIHandler {
	return &APIHandler{
		interview:  interview,
		generation: generation,
		background: background,
		analyzer:   analyzer,
		dbStore:    dbStore,
	}
}

// Interview handlers

type CreateSessionRequest struct {
	ReferenceURL string `json:"reference_url,omitempty"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	session, err := h.interview.CreateSession(req.ReferenceURL)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.interview.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			http.Error(w, "세션을 찾을 수 없습니다", http.StatusNotFound)
			return
		}
		log.Printf("Error getting session %s: %v", sessionID, err)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(session)
}

func (h *APIHandler) NextQuestionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	question, err := h.interview.NextQuestion(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			http.Error(w, "세션을 찾을 수 없습니다", http.StatusNotFound)
			return
		}
		log.Printf("Error getting next question for session %s: %v", sessionID, err)
		http.Error(w, "Failed to get next question", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(question)
}

type AnswerRequest struct {
	FieldName string      `json:"field_name"`
	Value     store.Value `json:"value"`
}

func (h *APIHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.FieldName == "" {
		http.Error(w, "field_name is required", http.StatusBadRequest)
		return
	}

	if err := h.interview.SubmitAnswer(sessionID, req.FieldName, req.Value); err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			http.Error(w, "세션을 찾을 수 없습니다", http.StatusNotFound)
			return
		}
		log.Printf("Error submitting answer for session %s: %v", sessionID, err)
		http.Error(w, "Failed to submit answer", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"success": true, "field_name": req.FieldName})
}

// Generation handlers

type GenerateRequest struct {
	SessionID    string `json:"session_id"`
	OutputFormat string `json:"output_format,omitempty"`
	// TemplateID is accepted for compatibility; template selection is by
	// category lookup.
	TemplateID *int64 `json:"template_id,omitempty"`
}

type GenerateResponse struct {
	ID          int64   `json:"id"`
	HTMLContent *string `json:"html_content,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	PreviewURL  string  `json:"preview_url"`
}

func (h *APIHandler) GenerateDetailPageHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.OutputFormat == "" {
		req.OutputFormat = store.OutputBoth
	}
	if req.OutputFormat != store.OutputHTML && req.OutputFormat != store.OutputImage && req.OutputFormat != store.OutputBoth {
		http.Error(w, "output_format must be html, image, or both", http.StatusBadRequest)
		return
	}

	history, err := h.generation.Generate(r.Context(), req.SessionID, req.OutputFormat, req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSessionNotFound):
			http.Error(w, "세션을 찾을 수 없습니다", http.StatusNotFound)
		case errors.Is(err, core.ErrInterviewIncomplete):
			http.Error(w, "문답이 완료되지 않았습니다", http.StatusBadRequest)
		default:
			log.Printf("Error generating detail page for session %s: %v", req.SessionID, err)
			http.Error(w, "생성 실패: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	resp := GenerateResponse{
		ID:          history.ID,
		HTMLContent: history.HTMLContent,
		PreviewURL:  fmt.Sprintf("/api/generate/preview/%d", history.ID),
	}
	if history.ImagePath != nil {
		imageURL := fmt.Sprintf("/api/generate/images/%d", history.ID)
		resp.ImageURL = &imageURL
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *APIHandler) GetGeneratedImageHandler(w http.ResponseWriter, r *http.Request) {
	historyID, err := strconv.ParseInt(chi.URLParam(r, "historyID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid history id", http.StatusBadRequest)
		return
	}

	path, err := h.generation.GetImagePath(historyID)
	if err != nil {
		if errors.Is(err, core.ErrHistoryNotFound) || errors.Is(err, core.ErrImageNotFound) {
			http.Error(w, "이미지를 찾을 수 없습니다", http.StatusNotFound)
			return
		}
		log.Printf("Error resolving image for history %d: %v", historyID, err)
		http.Error(w, "Failed to get image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="detail_page_%d.png"`, historyID))
	http.ServeFile(w, r, path)
}

func (h *APIHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	historyID, err := strconv.ParseInt(chi.URLParam(r, "historyID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid history id", http.StatusBadRequest)
		return
	}

	history, err := h.generation.GetHistory(historyID)
	if err != nil {
		if errors.Is(err, core.ErrHistoryNotFound) {
			http.Error(w, "생성 이력을 찾을 수 없습니다", http.StatusNotFound)
			return
		}
		log.Printf("Error getting history %d: %v", historyID, err)
		http.Error(w, "Failed to get preview", http.StatusInternalServerError)
		return
	}
	if history.HTMLContent == nil {
		http.Error(w, "미리보기를 찾을 수 없습니다", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(*history.HTMLContent))
}

type BackgroundGenerateRequest struct {
	Category     string `json:"category"`
	Mood         string `json:"mood"`
	ColorScheme  string `json:"color_scheme,omitempty"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
}

func (h *APIHandler) GenerateBackgroundHandler(w http.ResponseWriter, r *http.Request) {
	var req BackgroundGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Category == "" || req.Mood == "" {
		http.Error(w, "category and mood are required", http.StatusBadRequest)
		return
	}

	imageURL, err := h.background.Generate(r.Context(), req.Category, req.Mood, req.ColorScheme, req.CustomPrompt)
	if err != nil {
		log.Printf("Error generating background image: %v", err)
		http.Error(w, "이미지 생성 실패: "+err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"image_url": imageURL})
}

// Template handlers

func (h *APIHandler) ListTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	templates, err := h.dbStore.ListTemplates(r.URL.Query().Get("category"))
	if err != nil {
		log.Printf("Error listing templates: %v", err)
		http.Error(w, "Failed to list templates", http.StatusInternalServerError)
		return
	}
	if templates == nil {
		templates = []store.Template{}
	}
	json.NewEncoder(w).Encode(templates)
}

func (h *APIHandler) GetTemplateHandler(w http.ResponseWriter, r *http.Request) {
	templateID, err := strconv.ParseInt(chi.URLParam(r, "templateID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid template id", http.StatusBadRequest)
		return
	}

	tmpl, err := h.dbStore.GetTemplateByID(templateID)
	if err != nil {
		log.Printf("Error getting template %d: %v", templateID, err)
		http.Error(w, "Failed to get template", http.StatusInternalServerError)
		return
	}
	if tmpl == nil {
		http.Error(w, "템플릿을 찾을 수 없습니다", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(tmpl)
}

type CreateTemplateRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Description  *string `json:"description,omitempty"`
	HTMLTemplate string  `json:"html_template"`
}

func (h *APIHandler) CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Category == "" || req.HTMLTemplate == "" {
		http.Error(w, "name, category and html_template are required", http.StatusBadRequest)
		return
	}

	tmpl := store.Template{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		HTMLTemplate: req.HTMLTemplate,
	}
	if err := h.dbStore.CreateTemplate(&tmpl); err != nil {
		log.Printf("Error creating template %s: %v", req.Name, err)
		http.Error(w, "Failed to create template", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tmpl)
}

func (h *APIHandler) DeleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	templateID, err := strconv.ParseInt(chi.URLParam(r, "templateID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid template id", http.StatusBadRequest)
		return
	}

	if err := h.dbStore.DeleteTemplate(templateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "템플릿을 찾을 수 없습니다", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting template %d: %v", templateID, err)
		http.Error(w, "Failed to delete template", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Analysis handlers

type AnalyzeRequest struct {
	URL string `json:"url"`
}

type AnalyzeResponse struct {
	LayoutPattern string            `json:"layout_pattern"`
	ColorScheme   map[string]string `json:"color_scheme"`
	Sections      []string          `json:"sections"`
	Highlights    []string          `json:"highlights"`
	ToneAndManner string            `json:"tone_and_manner"`
	ScreenshotURL string            `json:"screenshot_url,omitempty"`
}

func (h *APIHandler) AnalyzeReferenceHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		http.Error(w, "A valid http(s) url is required", http.StatusBadRequest)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		log.Printf("Error analyzing reference %s: %v", req.URL, err)
		http.Error(w, "분석 실패: "+err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(AnalyzeResponse{
		LayoutPattern: analysis.Result.LayoutPattern,
		ColorScheme:   analysis.Result.ColorScheme,
		Sections:      analysis.Result.Sections,
		Highlights:    analysis.Result.Highlights,
		ToneAndManner: analysis.Result.ToneAndManner,
		ScreenshotURL: analysis.ScreenshotPath,
	})
}
