package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNotFound is returned by delete/update operations that matched no row.
// Read operations return (nil, nil) for missing rows instead.
var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && !strings.HasPrefix(dataSourceName, ":") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY, -- UUID
        status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN ('in_progress', 'completed', 'cancelled')),
        context_json TEXT NOT NULL DEFAULT '{}',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS generation_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        product_name TEXT,
        output_format TEXT NOT NULL CHECK (output_format IN ('html', 'image', 'both')),
        html_content TEXT,
        image_path TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (session_id) REFERENCES sessions (id)
    );

    CREATE TABLE IF NOT EXISTS reference_analysis (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        url TEXT NOT NULL,
        screenshot_path TEXT,
        analysis_json TEXT, -- Structured vision analysis result
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS templates (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        category TEXT NOT NULL,
        description TEXT,
        html_template TEXT NOT NULL,
        is_default INTEGER DEFAULT 0,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Session methods

func (s *SQLiteStore) CreateSession(contextMap Context) (*Session, error) {
	if contextMap == nil {
		contextMap = Context{}
	}
	contextJSON, err := json.Marshal(contextMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session context: %w", err)
	}

	sessionID := uuid.NewString()
	now := time.Now()
	stmt, err := s.db.Prepare("INSERT INTO sessions (id, status, context_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(sessionID, StatusInProgress, string(contextJSON), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to execute session insert: %w", err)
	}
	return &Session{ID: sessionID, Status: StatusInProgress, Context: contextMap, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStore) GetSessionByID(sessionID string) (*Session, error) {
	var session Session
	var contextJSON string
	err := s.db.QueryRow("SELECT id, status, context_json, created_at, updated_at FROM sessions WHERE id = ?", sessionID).
		Scan(&session.ID, &session.Status, &contextJSON, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Context = Context{}
	if contextJSON != "" {
		if err := json.Unmarshal([]byte(contextJSON), &session.Context); err != nil {
			log.Printf("Warning: failed to unmarshal context for session %s: %v. Context will be empty.", session.ID, err)
			session.Context = Context{}
		}
	}
	return &session, nil
}

// UpdateSessionContext replaces the stored context wholesale with a fresh
// mapping. Callers merge into a clone first.
func (s *SQLiteStore) UpdateSessionContext(sessionID string, contextMap Context) error {
	contextJSON, err := json.Marshal(contextMap)
	if err != nil {
		return fmt.Errorf("failed to marshal session context: %w", err)
	}

	stmt, err := s.db.Prepare("UPDATE sessions SET context_json = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare context update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(string(contextJSON), time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to execute context update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) UpdateSessionStatus(sessionID string, status string) error {
	stmt, err := s.db.Prepare("UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare status update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(status, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to execute status update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// GenerationHistory methods

func (s *SQLiteStore) CreateGenerationHistory(h *GenerationHistory) error {
	h.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO generation_history (session_id, product_name, output_format, html_content, image_path, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(h.SessionID, h.ProductName, h.OutputFormat, h.HTMLContent, h.ImagePath, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute history insert: %w", err)
	}
	h.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetGenerationHistoryByID(historyID int64) (*GenerationHistory, error) {
	var h GenerationHistory
	var htmlContent, imagePath sql.NullString
	err := s.db.QueryRow("SELECT id, session_id, product_name, output_format, html_content, image_path, created_at FROM generation_history WHERE id = ?", historyID).
		Scan(&h.ID, &h.SessionID, &h.ProductName, &h.OutputFormat, &htmlContent, &imagePath, &h.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get generation history: %w", err)
	}
	if htmlContent.Valid {
		h.HTMLContent = &htmlContent.String
	}
	if imagePath.Valid {
		h.ImagePath = &imagePath.String
	}
	return &h, nil
}

// ReferenceAnalysis methods

func (s *SQLiteStore) CreateReferenceAnalysis(a *ReferenceAnalysis) error {
	analysisJSON, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	a.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO reference_analysis (url, screenshot_path, analysis_json, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare analysis insert: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(a.URL, a.ScreenshotPath, string(analysisJSON), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute analysis insert: %w", err)
	}
	a.ID, _ = res.LastInsertId()
	return nil
}

// Template methods

func (s *SQLiteStore) ListTemplates(category string) ([]Template, error) {
	query := "SELECT id, name, category, description, html_template, is_default, created_at FROM templates"
	args := []any{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, nil
}

func (s *SQLiteStore) GetTemplateByID(templateID int64) (*Template, error) {
	row := s.db.QueryRow("SELECT id, name, category, description, html_template, is_default, created_at FROM templates WHERE id = ?", templateID)
	t, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) CreateTemplate(t *Template) error {
	t.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO templates (name, category, description, html_template, is_default, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare template insert: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(t.Name, t.Category, t.Description, t.HTMLTemplate, t.IsDefault, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute template insert: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) DeleteTemplate(templateID int64) error {
	res, err := s.db.Exec("DELETE FROM templates WHERE id = ?", templateID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("template %d: %w", templateID, ErrNotFound)
	}
	return nil
}

// SeedTemplatesFromDir loads every *.html file in dir into the template
// registry, once, when the table is empty. The file name (minus extension)
// doubles as the category; default.html is flagged as the default.
func (s *SQLiteStore) SeedTemplatesFromDir(dir string) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count templates: %w", err)
	}
	if count > 0 {
		return 0, nil // Already seeded
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read templates directory %s: %w", dir, err)
	}

	seeded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("Warning: failed to read template file %s: %v. Skipping.", entry.Name(), err)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		t := Template{
			Name:         name,
			Category:     name,
			HTMLTemplate: string(body),
			IsDefault:    name == "default",
		}
		if err := s.CreateTemplate(&t); err != nil {
			log.Printf("Warning: failed to seed template %s: %v. Skipping.", name, err)
			continue
		}
		seeded++
	}
	return seeded, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*Template, error) {
	var t Template
	var description sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Category, &description, &t.HTMLTemplate, &t.IsDefault, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	return &t, nil
}
