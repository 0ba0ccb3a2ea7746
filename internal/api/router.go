package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/interview", func(r chi.Router) {
			r.Post("/sessions", apiHandler.CreateSessionHandler)
			r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
			r.Get("/sessions/{sessionID}/next-question", apiHandler.NextQuestionHandler)
			r.Post("/sessions/{sessionID}/answer", apiHandler.SubmitAnswerHandler)
		})

		r.Route("/generate", func(r chi.Router) {
			r.Post("/detail-page", apiHandler.GenerateDetailPageHandler)
			r.Get("/images/{historyID}", apiHandler.GetGeneratedImageHandler)
			r.Get("/preview/{historyID}", apiHandler.PreviewHandler)
			r.Post("/background-image", apiHandler.GenerateBackgroundHandler)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", apiHandler.ListTemplatesHandler)
			r.Get("/{templateID}", apiHandler.GetTemplateHandler)
			r.Post("/", apiHandler.CreateTemplateHandler)
			r.Delete("/{templateID}", apiHandler.DeleteTemplateHandler)
		})

		r.Post("/analyze/reference", apiHandler.AnalyzeReferenceHandler)
	})

	return r
}
