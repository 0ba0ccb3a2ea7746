package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HyunjoonKwak/page-maker/internal/store"
	"github.com/google/uuid"
)

// GenerationService orchestrates one detail-page generation: resolve and
// gate the session, render, optionally rasterize, then record history. The
// history row is only written after the whole pipeline has succeeded, so a failed
// rasterization never leaves an orphaned partial record.
type GenerationService struct {
	dbStore    *store.SQLiteStore
	renderer   *Renderer
	rasterizer PageCapturer
	imagesDir  string
}

func NewGenerationService(db *store.SQLiteStore, renderer *Renderer, rasterizer PageCapturer, imagesDir string) *GenerationService {
	return &GenerationService{
		dbStore:    db,
		renderer:   renderer,
		rasterizer: rasterizer,
		imagesDir:  imagesDir,
	}
}

// Generate renders the detail page for a completed session and records the
// result. outputFormat is html, image, or both.
func (s *GenerationService) Generate(ctx context.Context, sessionID string, outputFormat string, templateID *int64) (*store.GenerationHistory, error) {
	session, err := s.dbStore.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != store.StatusCompleted {
		return nil, ErrInterviewIncomplete
	}

	htmlContent, err := s.renderer.GenerateDetailPage(ctx, session.Context, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to render detail page: %w", err)
	}

	var imagePath *string
	if outputFormat == store.OutputImage || outputFormat == store.OutputBoth {
		path, err := s.rasterize(ctx, htmlContent, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize detail page: %w", err)
		}
		imagePath = &path
	}

	history := &store.GenerationHistory{
		SessionID:    sessionID,
		ProductName:  session.Context.GetString("product_name", ""),
		OutputFormat: outputFormat,
		ImagePath:    imagePath,
	}
	if outputFormat == store.OutputHTML || outputFormat == store.OutputBoth {
		history.HTMLContent = &htmlContent
	}
	if err := s.dbStore.CreateGenerationHistory(history); err != nil {
		return nil, fmt.Errorf("failed to record generation history: %w", err)
	}
	return history, nil
}

func (s *GenerationService) rasterize(ctx context.Context, htmlContent, sessionID string) (string, error) {
	if s.rasterizer == nil {
		return "", fmt.Errorf("no rasterizer configured")
	}

	imagePNG, err := s.rasterizer.RenderPNG(ctx, htmlContent)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	path := filepath.Join(s.imagesDir, fmt.Sprintf("detail_page_%s_%s.png", sessionID, uuid.NewString()))
	if err := os.WriteFile(path, imagePNG, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return path, nil
}

// GetHistory fetches one generation record.
func (s *GenerationService) GetHistory(historyID int64) (*store.GenerationHistory, error) {
	history, err := s.dbStore.GetGenerationHistoryByID(historyID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		return nil, ErrHistoryNotFound
	}
	return history, nil
}

// GetImagePath resolves the on-disk image for a history record.
func (s *GenerationService) GetImagePath(historyID int64) (string, error) {
	history, err := s.GetHistory(historyID)
	if err != nil {
		return "", err
	}
	if history.ImagePath == nil {
		return "", ErrImageNotFound
	}
	if _, err := os.Stat(*history.ImagePath); err != nil {
		return "", ErrImageNotFound
	}
	return *history.ImagePath, nil
}
