package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"leaves v1 alone", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{EmbeddingHost: tt.host}
			c.Normalize()
			assert.Equal(t, tt.want, c.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing host fails", func(t *testing.T) {
		c := NewConfig(WithEmbeddingHost(""))
		assert.Error(t, c.Validate())
	})

	t.Run("missing model fails", func(t *testing.T) {
		c := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, c.Validate())
	})

	t.Run("options override defaults", func(t *testing.T) {
		c := NewConfig(
			WithEmbeddingHost("http://embed.internal:8080"),
			WithEmbeddingModel("nomic-embed-text"),
		)
		require.NoError(t, c.Validate())
		assert.Equal(t, "http://embed.internal:8080/v1", c.EmbeddingHost)
		assert.Equal(t, "nomic-embed-text", c.EmbeddingModel)
	})
}
