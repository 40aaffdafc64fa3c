package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/romariotrain/bick-platform/internal/execx"
)

const (
	defaultProbeTimeout     = 30 * time.Second
	defaultTranscodeTimeout = 2 * time.Minute

	// pcmSampleRate keeps the PCM stream small; peak extraction does not
	// need more resolution than this.
	pcmSampleRate = "8000"

	ogImageSize   = "1200x630"
	teaserSeconds = "15"
)

// Tool invokes ffprobe/ffmpeg for validation, transcoding and promo assets.
type Tool struct {
	runner           execx.Runner
	ffmpegBin        string
	ffprobeBin       string
	probeTimeout     time.Duration
	transcodeTimeout time.Duration
}

func NewTool(runner execx.Runner, ffmpegBin, ffprobeBin string) *Tool {
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBin) == "" {
		ffprobeBin = "ffprobe"
	}
	return &Tool{
		runner:           runner,
		ffmpegBin:        ffmpegBin,
		ffprobeBin:       ffprobeBin,
		probeTimeout:     defaultProbeTimeout,
		transcodeTimeout: defaultTranscodeTimeout,
	}
}

// Probe inspects the file and decodes ffprobe's JSON output.
func (t *Tool) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if strings.TrimSpace(path) == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}

	res, err := t.runner.Run(ctx, execx.Command{
		Name:    t.ffprobeBin,
		Args:    []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path},
		Timeout: t.probeTimeout,
	})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe: %w", err)
	}

	result, err := decodeProbe(res.Stdout)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// TranscodeMP3 writes the playable mp3 rendition of src to dst.
func (t *Tool) TranscodeMP3(ctx context.Context, src, dst string) error {
	_, err := t.runner.Run(ctx, execx.Command{
		Name:    t.ffmpegBin,
		Args:    []string{"-y", "-i", src, "-vn", "-acodec", "libmp3lame", "-b:a", "128k", dst},
		Timeout: t.transcodeTimeout,
	})
	if err != nil {
		return fmt.Errorf("ffmpeg transcode: %w", err)
	}
	return nil
}

// ExtractPCM decodes src into raw mono s16le samples on stdout.
func (t *Tool) ExtractPCM(ctx context.Context, src string) ([]byte, error) {
	res, err := t.runner.Run(ctx, execx.Command{
		Name:    t.ffmpegBin,
		Args:    []string{"-v", "error", "-i", src, "-f", "s16le", "-acodec", "pcm_s16le", "-ac", "1", "-ar", pcmSampleRate, "-"},
		Timeout: t.transcodeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pcm: %w", err)
	}
	return res.Stdout, nil
}

// RenderWaveformPNG draws the og/share image for the audio file.
func (t *Tool) RenderWaveformPNG(ctx context.Context, src, dst string) error {
	filter := "showwavespic=s=" + ogImageSize + ":colors=white"
	_, err := t.runner.Run(ctx, execx.Command{
		Name:    t.ffmpegBin,
		Args:    []string{"-y", "-i", src, "-filter_complex", filter, "-frames:v", "1", dst},
		Timeout: t.transcodeTimeout,
	})
	if err != nil {
		return fmt.Errorf("ffmpeg waveform image: %w", err)
	}
	return nil
}

// RenderTeaser builds a short promo video: the waveform image looped under
// the first seconds of audio.
func (t *Tool) RenderTeaser(ctx context.Context, audio, image, dst string) error {
	_, err := t.runner.Run(ctx, execx.Command{
		Name: t.ffmpegBin,
		Args: []string{
			"-y", "-loop", "1", "-i", image, "-i", audio,
			"-t", teaserSeconds,
			"-c:v", "libx264", "-pix_fmt", "yuv420p",
			"-c:a", "aac", "-shortest", dst,
		},
		Timeout: t.transcodeTimeout,
	})
	if err != nil {
		return fmt.Errorf("ffmpeg teaser: %w", err)
	}
	return nil
}
