package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey string
	OpenAIAPIKey string
	DatabaseURL  string
	HTTPPort     string
	LogLevel     string
	TemplatesDir string
	DataDir      string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		DatabaseURL:  getEnv("DATABASE_URL", "data/page_maker.db"),
		HTTPPort:     getEnv("HTTP_PORT", "8000"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
		DataDir:      getEnv("DATA_DIR", "data"),
	}

	// The AI keys are optional: without GEMINI_API_KEY the interview skips
	// adaptive questions and copywriting falls back to static strings; without
	// OPENAI_API_KEY the background-image endpoint is unavailable.
	if AppConfig.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY not set; adaptive questions and AI copywriting are disabled")
	}
	if AppConfig.OpenAIAPIKey == "" {
		log.Println("OPENAI_API_KEY not set; background image generation is disabled")
	}
}

// GeneratedImagesDir is where rasterized detail pages are written.
func (c Config) GeneratedImagesDir() string {
	return filepath.Join(c.DataDir, "generated_images")
}

// ScreenshotsDir is where reference page captures are written.
func (c Config) ScreenshotsDir() string {
	return filepath.Join(c.DataDir, "screenshots")
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
