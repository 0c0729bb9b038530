package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGeminiConfig(t *testing.T) {
	cfg := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.GetModel(TierLite))
	assert.NotEmpty(t, cfg.GetModel(TierStandard))
	assert.NotEmpty(t, cfg.GetModel(TierAdvanced))
	assert.Equal(t, DefaultCallTimeout, cfg.CallTimeout())
}

func TestGetModelFallback(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierStandard: "gemini-2.5-flash",
		},
	}

	// Unknown tier falls back to standard
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierAdvanced))

	cfg = &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "gemini-2.5-flash-lite",
		},
	}
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierAdvanced))

	empty := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierStandard))
}

func TestWithModel(t *testing.T) {
	cfg := DefaultGeminiConfig()
	custom := cfg.WithModel(TierAdvanced, "gemini-experimental")

	assert.Equal(t, "gemini-experimental", custom.GetModel(TierAdvanced))
	// Original unchanged
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
	// Other tiers carried over
	assert.Equal(t, cfg.GetModel(TierLite), custom.GetModel(TierLite))
}

func TestCallTimeout(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini}
	assert.Equal(t, DefaultCallTimeout, cfg.CallTimeout())

	custom := DefaultGeminiConfig().WithTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, custom.CallTimeout())
	assert.Equal(t, "gemini-2.5-pro", custom.GetModel(TierAdvanced))
}
