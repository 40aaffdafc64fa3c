package extract

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/execx"
)

const (
	defaultProbeTimeout    = 30 * time.Second
	defaultDownloadTimeout = 5 * time.Minute
)

// Result is a successful acquisition: a local audio file plus the metadata
// the probe step produced. Cleanup removes the scoped temp directory and is
// safe to call more than once.
type Result struct {
	LocalAudioPath string
	DurationMs     int64
	Title          string
	ThumbnailURL   string
	Cleanup        func()
}

// Extractor resolves a remote media URL into a local audio file via yt-dlp.
type Extractor struct {
	runner          execx.Runner
	bin             string
	tempDir         string
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	logger          zerolog.Logger
}

func NewExtractor(runner execx.Runner, bin string, logger zerolog.Logger) *Extractor {
	if strings.TrimSpace(bin) == "" {
		bin = "yt-dlp"
	}
	return &Extractor{
		runner:          runner,
		bin:             bin,
		tempDir:         os.TempDir(),
		probeTimeout:    defaultProbeTimeout,
		downloadTimeout: defaultDownloadTimeout,
		logger:          logger.With().Str("component", "extractor").Logger(),
	}
}

// probeInfo is the subset of yt-dlp's --dump-json output we care about.
type probeInfo struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

// Acquire runs the two-step acquisition: a bounded metadata probe, then the
// audio download into a scoped temp directory. Intermediate files are removed
// on every failure path; on success the caller owns Cleanup.
func (e *Extractor) Acquire(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, newError(CodeInvalidURL, "url is required", nil)
	}
	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() {
		return nil, newError(CodeInvalidURL, "url is not absolute", err)
	}
	if DetectPlatform(rawURL) == "" {
		return nil, newError(CodeUnsupportedPlatform, "platform is not supported", nil)
	}

	info, err := e.probe(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(e.tempDir, "bick-extract-")
	if err != nil {
		return nil, newError(CodeExtractionFailed, "create temp dir", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	outPath := filepath.Join(dir, "audio.mp3")
	_, err = e.runner.Run(ctx, execx.Command{
		Name: e.bin,
		Args: []string{
			"-x", "--audio-format", "mp3", "--audio-quality", "0",
			"--no-playlist", "--no-warnings",
			"-o", outPath,
			rawURL,
		},
		Timeout: e.downloadTimeout,
	})
	if err != nil {
		cleanup()
		return nil, newError(CodeExtractionFailed, "audio download failed", err)
	}

	// Exit code alone is not trusted: the tool can report success without
	// producing the file.
	if _, statErr := os.Stat(outPath); statErr != nil {
		cleanup()
		return nil, newError(CodeExtractionFailed, "tool produced no output file", statErr)
	}

	e.logger.Info().
		Str("url", rawURL).
		Str("path", outPath).
		Int64("duration_ms", int64(info.Duration*1000)).
		Msg("audio acquired")

	return &Result{
		LocalAudioPath: outPath,
		DurationMs:     int64(info.Duration * 1000),
		Title:          info.Title,
		ThumbnailURL:   info.Thumbnail,
		Cleanup:        cleanup,
	}, nil
}

func (e *Extractor) probe(ctx context.Context, rawURL string) (probeInfo, error) {
	res, err := e.runner.Run(ctx, execx.Command{
		Name:    e.bin,
		Args:    []string{"--dump-json", "--no-playlist", "--no-warnings", rawURL},
		Timeout: e.probeTimeout,
	})
	if err != nil {
		if isUnavailable(err) {
			return probeInfo{}, newError(CodeVideoUnavailable, "source is private or unavailable", err)
		}
		return probeInfo{}, newError(CodeExtractionFailed, "metadata probe failed", err)
	}

	var info probeInfo
	if err := json.Unmarshal(res.Stdout, &info); err != nil {
		return probeInfo{}, newError(CodeExtractionFailed, "metadata probe returned malformed output", err)
	}
	return info, nil
}

// isUnavailable recognizes the tool's wording for private or deleted sources.
func isUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"video unavailable",
		"private video",
		"this video is not available",
		"account has been terminated",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
