package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
		assert.Equal(t, "embeddinggemma", cfg.Model)
		assert.Equal(t, "none", cfg.APIKey)
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://embeddings.internal:9100"),
			WithModel("text-embedding-3-small"),
			WithAPIKey("secret"),
		)
		assert.Equal(t, "http://embeddings.internal:9100", cfg.Host)
		assert.Equal(t, "text-embedding-3-small", cfg.Model)
		assert.Equal(t, "secret", cfg.APIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"appends v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"leaves v1 suffix alone", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host, Model: "m"}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing host fails", func(t *testing.T) {
		cfg := &Config{Model: "embeddinggemma"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model fails", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes host", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434", Model: "m"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})
}
