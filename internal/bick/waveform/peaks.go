// Package waveform turns raw PCM audio into the normalized peak array used
// for waveform visualization.
package waveform

import (
	"encoding/binary"
	"math"
)

// DefaultPeakCount is the number of peaks rendered by the player UI.
const DefaultPeakCount = 200

// maxMagnitude is the largest magnitude a 16-bit signed sample can carry
// (the most negative value, -32768). Dividing by it keeps peaks in [0, 1].
const maxMagnitude = 32768.0

// ExtractPeaks partitions the s16le sample stream into contiguous windows and
// returns the maximum absolute amplitude of each window, normalized to [0, 1].
//
// The window size is floor(samples/target), clamped to at least one sample,
// and the final window may be short; the output length therefore approximates
// target but can exceed it by the integer-division remainder. When the input
// holds fewer samples than target, every sample stands as its own peak.
// Empty input yields an empty slice. Pure function, no I/O.
func ExtractPeaks(pcm []byte, target int) []float64 {
	if target <= 0 {
		return []float64{}
	}

	total := len(pcm) / 2
	if total == 0 {
		return []float64{}
	}

	window := total / target
	if window < 1 {
		window = 1
	}

	peaks := make([]float64, 0, total/window+1)
	for start := 0; start < total; start += window {
		end := start + window
		if end > total {
			end = total
		}

		var peak float64
		for i := start; i < end; i++ {
			s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
			if v := math.Abs(float64(s)); v > peak {
				peak = v
			}
		}

		normalized := peak / maxMagnitude
		if normalized > 1 {
			normalized = 1
		}
		peaks = append(peaks, normalized)
	}

	return peaks
}
