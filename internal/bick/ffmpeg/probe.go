// Package ffmpeg wraps the ffprobe/ffmpeg command line tools behind typed
// calls. All invocations go through execx with per-stage timeouts.
package ffmpeg

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProbeResult is the decoded ffprobe JSON for a media file.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

func decodeProbe(raw []byte) (ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ProbeResult{}, err
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r ProbeResult) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationMs returns the container duration in milliseconds, or 0 when
// ffprobe did not report one.
func (r ProbeResult) DurationMs() int64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64)
	if err != nil || math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}
