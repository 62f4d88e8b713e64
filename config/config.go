// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file.
type Config struct {
	// LLMHost is the base URL of the OpenAI-compatible endpoint serving both
	// embeddings and chat.
	LLMHost        string
	EmbeddingModel string
	LLMModel       string
	WhisperModel   string
	OCRLanguages   []string

	// DataDir holds the pdf/, image/ and audio/ source directories.
	DataDir   string
	DBPath    string
	IndexPath string

	HTTPPort      string
	TopK          int
	ContextBudget int
	CallTimeout   time.Duration
}

// Load reads the configuration. A .env file in the working directory is
// merged in when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LLMHost:        os.Getenv("LLM_HOST"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		WhisperModel:   os.Getenv("WHISPER_MODEL"),
		OCRLanguages:   splitList(getEnv("OCR_LANGUAGES", "spa,por,eng")),
		DataDir:        getEnv("DATA_DIR", "data"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		TopK:           getEnvAsInt("TOP_K", 5),
		ContextBudget:  getEnvAsInt("CONTEXT_BUDGET", 8000),
		CallTimeout:    getEnvAsDuration("CALL_TIMEOUT", 2*time.Minute),
	}

	cfg.DBPath = getEnv("DB_PATH", filepath.Join(cfg.DataDir, "docit.db"))
	cfg.IndexPath = getEnv("INDEX_PATH", filepath.Join(cfg.DataDir, "index", "snapshot.mus"))

	for _, required := range []struct{ name, value string }{
		{"LLM_HOST", cfg.LLMHost},
		{"EMBEDDING_MODEL", cfg.EmbeddingModel},
		{"LLM_MODEL", cfg.LLMModel},
		{"WHISPER_MODEL", cfg.WhisperModel},
	} {
		if required.value == "" {
			return nil, fmt.Errorf("%s environment variable is required", required.name)
		}
	}

	return cfg, nil
}

// PDFDir returns the directory scanned for PDF files.
func (c *Config) PDFDir() string { return filepath.Join(c.DataDir, "pdf") }

// ImageDir returns the directory scanned for image files.
func (c *Config) ImageDir() string { return filepath.Join(c.DataDir, "image") }

// AudioDir returns the directory scanned for audio files.
func (c *Config) AudioDir() string { return filepath.Join(c.DataDir, "audio") }

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
