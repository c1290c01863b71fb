package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/fetchbox/internal/site"
)

func setRoots(t *testing.T) (string, string) {
	dl := filepath.Join(t.TempDir(), "downloads")
	up := filepath.Join(t.TempDir(), "uploads")
	t.Setenv("DOWNLOAD_ROOT", dl)
	t.Setenv("UPLOAD_ROOT", up)
	return dl, up
}

func TestLoadConfig_Success_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dl, up := setRoots(t)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, 3000, cfg.WebServerPort)
	require.Equal(t, dl, cfg.DownloadRoot)
	require.Equal(t, up, cfg.UploadRoot)
	require.Equal(t, 3*time.Hour, cfg.JobTTL())
	require.Equal(t, 3*time.Hour, cfg.CleanupInterval())
	require.Equal(t, time.Minute, cfg.ExpiryCheckInterval())
	require.Equal(t, "yt-dlp", cfg.YtdlpPath)
	require.Equal(t, "curl", cfg.CurlPath)
	require.Equal(t, "2M", cfg.BodyLimit)
	require.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	require.Equal(t, "en.*", cfg.SubtitleTag().SubtitlePattern())
}

func TestLoadConfig_ValidationError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("WEBSERVER_PORT", "8080")
	// Missing DOWNLOAD_ROOT / UPLOAD_ROOT

	cfg, err := LoadConfig(context.Background())
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setRoots(t)
	t.Setenv("PORT", "8081")
	t.Setenv("JOB_TTL_HOURS", "0.5")
	t.Setenv("CLEANUP_INTERVAL_HOURS", "1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUBTITLE_LANGUAGE", "es-419")
	t.Setenv("VIMEO_COOKIES_PATH", "/secrets/vimeo.txt")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.WebServerPort)
	require.Equal(t, 30*time.Minute, cfg.JobTTL())
	require.Equal(t, time.Hour, cfg.CleanupInterval())
	require.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	require.Equal(t, "es.*", cfg.SubtitleTag().SubtitlePattern())
	require.Equal(t, "/secrets/vimeo.txt", cfg.Cookies()[site.CookieVimeo])
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	for name, env := range map[string][2]string{
		"ttl":        {"JOB_TTL_HOURS", "0"},
		"log level":  {"LOG_LEVEL", "loud"},
		"body limit": {"BODY_LIMIT", "lots"},
		"language":   {"SUBTITLE_LANGUAGE", "not a tag"},
	} {
		t.Run(name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			setRoots(t)
			t.Setenv(env[0], env[1])

			cfg, err := LoadConfig(context.Background())
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}

func TestEnsureRoots(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{
		DownloadRoot: filepath.Join(base, "a", "downloads"),
		UploadRoot:   filepath.Join(base, "b", "uploads"),
	}
	require.NoError(t, cfg.EnsureRoots())
	for _, p := range cfg.Roots() {
		require.True(t, filepath.IsAbs(p))
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FETCHBOX_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Setenv("FETCHBOX_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("FETCHBOX_TEST_VALUE"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-dotenv", os.Getenv("FETCHBOX_TEST_VALUE"))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadWithoutValidation_NoRoots(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("YTDLP_PATH", "/opt/yt-dlp")

	cfg, err := LoadWithoutValidation()
	require.NoError(t, err)
	require.Empty(t, cfg.DownloadRoot)
	require.Equal(t, "/opt/yt-dlp", cfg.YtdlpPath)
	require.Equal(t, "curl", cfg.CurlPath)
	require.Equal(t, 3*time.Hour, cfg.JobTTL())
}

func TestBodyLimitBytes(t *testing.T) {
	for limit, want := range map[string]uint64{
		"":       2_000_000,
		"2M":     2_000_000,
		"512KiB": 512 << 10,
		"1,000":  1000,
	} {
		n, err := (&Config{BodyLimit: limit}).BodyLimitBytes()
		require.NoError(t, err, limit)
		require.Equal(t, want, n, limit)
	}

	_, err := (&Config{BodyLimit: "lots"}).BodyLimitBytes()
	require.Error(t, err)
	_, err = (&Config{BodyLimit: "0"}).BodyLimitBytes()
	require.Error(t, err)
}
