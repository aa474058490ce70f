package config_test // Use an external test package

import (
	"testing"
	"time"

	"hlsforge/config"
	"hlsforge/hls"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads default values correctly", func(t *testing.T) {
		// Ensure no env vars are lingering from other tests
		t.Setenv("HLSFORGE_PORT", "")
		t.Setenv("HLSFORGE_MAX_CONCURRENCY", "")
		t.Setenv("HLSFORGE_AUTH_ENABLE", "")
		t.Setenv("HLSFORGE_FF_TIMEOUT", "")
		t.Setenv("HLSFORGE_MAX_INPUT_SIZE", "")

		cfg, err := config.Load()
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 2, cfg.MaxConcurrency)
		assert.Equal(t, 1, cfg.MaxActiveJobs)
		assert.Equal(t, false, cfg.AuthEnable)
		assert.Equal(t, "ffmpeg", cfg.FFBin)
		assert.Equal(t, 30*time.Minute, cfg.FFTimeout)
		assert.Equal(t, int64(2*1024*1024*1024), cfg.MaxInputSize)
		assert.Equal(t, "./uploads", cfg.UploadDir)
		assert.Equal(t, "./streams", cfg.OutputRoot)
		assert.Equal(t, false, cfg.KeepPartial)
		assert.Equal(t, hls.DefaultLadder(), cfg.Ladder)
	})

	t.Run("overrides defaults with environment variables", func(t *testing.T) {
		t.Setenv("HLSFORGE_PORT", "9999")
		t.Setenv("HLSFORGE_MAX_CONCURRENCY", "10")
		t.Setenv("HLSFORGE_AUTH_ENABLE", "true")
		t.Setenv("HLSFORGE_AUTH_KEY", "newsecret")
		t.Setenv("HLSFORGE_MAX_INPUT_SIZE", "50MB")
		t.Setenv("HLSFORGE_FF_TIMEOUT", "90m")
		t.Setenv("HLSFORGE_KEEP_PARTIAL", "true")

		cfg, err := config.Load()
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, 10, cfg.MaxConcurrency)
		assert.Equal(t, true, cfg.AuthEnable)
		assert.Equal(t, "newsecret", cfg.AuthKey)
		assert.Equal(t, int64(50*1024*1024), cfg.MaxInputSize)
		assert.Equal(t, 90*time.Minute, cfg.FFTimeout)
		assert.Equal(t, true, cfg.KeepPartial)
	})
}
