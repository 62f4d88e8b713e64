package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_HOST", "http://localhost:11434/v1")
	t.Setenv("EMBEDDING_MODEL", "embeddinggemma")
	t.Setenv("LLM_MODEL", "qwen2.5:3b")
	t.Setenv("WHISPER_MODEL", "base")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "docit.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("data", "index", "snapshot.mus"), cfg.IndexPath)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 8000, cfg.ContextBudget)
	assert.Equal(t, 2*time.Minute, cfg.CallTimeout)
	assert.Equal(t, []string{"spa", "por", "eng"}, cfg.OCRLanguages)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATA_DIR", "/srv/docit")
	t.Setenv("TOP_K", "3")
	t.Setenv("CALL_TIMEOUT", "30s")
	t.Setenv("OCR_LANGUAGES", "eng, deu")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/docit", cfg.DataDir)
	assert.Equal(t, filepath.Join("/srv/docit", "docit.db"), cfg.DBPath)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCRLanguages)
	assert.Equal(t, filepath.Join("/srv/docit", "pdf"), cfg.PDFDir())
	assert.Equal(t, filepath.Join("/srv/docit", "image"), cfg.ImageDir())
	assert.Equal(t, filepath.Join("/srv/docit", "audio"), cfg.AudioDir())
}

func TestLoadRequiredVariables(t *testing.T) {
	for _, missing := range []string{"LLM_HOST", "EMBEDDING_MODEL", "LLM_MODEL", "WHISPER_MODEL"} {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), missing)
		})
	}
}
