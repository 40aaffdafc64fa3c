package assets

import (
	"path"
	"strings"
)

// Canonical asset file names inside a bick's storage prefix.
const (
	NameAudio    = "audio.mp3"
	NameWaveform = "waveform.json"
	NameOGImage  = "og.png"
	NameTeaser   = "teaser.mp4"
)

// allowed extensions for the uploaded original
var knownExtensions = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"m4a":  true,
	"ogg":  true,
	"flac": true,
	"aac":  true,
	"webm": true,
}

// KeyFor builds the deterministic object key for a bick's asset.
// Same inputs always give the same key, different assets of the same
// bick share the prefix but never the key.
func KeyFor(bickID, assetName string) string {
	return "uploads/" + bickID + "/" + assetName
}

// OriginalKey builds the object key for the uploaded original, deriving
// the extension from the client's filename. Unknown or missing extensions
// fall back to mp3.
func OriginalKey(bickID, originalFilename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalFilename), "."))
	if !knownExtensions[ext] {
		ext = "mp3"
	}
	return KeyFor(bickID, "original."+ext)
}
